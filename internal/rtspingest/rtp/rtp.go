// If you are AI: This file implements RTP header parsing and the UDP RTP
// receiver (C5). The receiver binds one UDP socket, decodes RTP, and
// reassembles fragmented payloads (the chunked/completed flag pattern);
// it is single-consumer per socket so no locking is needed on its own state.

package rtp

import (
	"context"
	"encoding/binary"
	"errors"
	"net"
	"time"
)

// pollInterval bounds how long Run blocks in ReadFromUDP before re-checking
// ctx.Done(); ctx cancellation is itself not a socket-level suspension
// point in Go, so this keeps Run responsive to Interrupt-style cancellation.
const pollInterval = 200 * time.Millisecond

func deadlineFromCtx(ctx context.Context) time.Time {
	return time.Now().Add(pollInterval)
}

var ErrShortPacket = errors.New("rtp: packet shorter than fixed header")

// Header is the fixed 12-byte RTP header fields this receiver cares about.
type Header struct {
	Version   uint8
	Marker    bool
	PayloadType uint8
	Seq       uint16
	Timestamp uint32
	SSRC      uint32
}

// Packet is one decoded, possibly-reassembled RTP payload delivered to a
// session. Chunked is true while accumulating; Completed is true when the
// payload is ready to deliver.
type Packet struct {
	Header
	Payload   []byte
	Chunked   bool
	Completed bool
}

// ParseHeader decodes the fixed RTP header from buf and returns the header
// plus the offset where the payload begins.
func ParseHeader(buf []byte) (Header, int, error) {
	if len(buf) < 12 {
		return Header{}, 0, ErrShortPacket
	}
	h := Header{
		Version:     buf[0] >> 6,
		Marker:      buf[1]&0x80 != 0,
		PayloadType: buf[1] & 0x7f,
		Seq:         binary.BigEndian.Uint16(buf[2:4]),
		Timestamp:   binary.BigEndian.Uint32(buf[4:8]),
		SSRC:        binary.BigEndian.Uint32(buf[8:12]),
	}
	csrcCount := int(buf[0] & 0x0f)
	offset := 12 + csrcCount*4
	if len(buf) < offset {
		return Header{}, 0, ErrShortPacket
	}
	return h, offset, nil
}

// PacketHandler receives completed, reassembled packets.
type PacketHandler func(pkt *Packet)

// Receiver binds one UDP port and decodes/reassembles RTP packets for a
// single stream (video or audio). It is not safe for concurrent use from
// more than the goroutine that calls Run.
type Receiver struct {
	conn    *net.UDPConn
	handler PacketHandler

	cache     []byte
	cacheSeq  uint16
	cacheInit bool

	// isChunkedContinuation decides whether a payload is a fragment that
	// must be appended to the reassembly cache rather than delivered
	// immediately. Video NALU fragmentation (FU-A) is the common case;
	// injected for testability.
	isChunkedContinuation func(payload []byte) (chunked, completed bool)

	packetCount uint64
}

// NewReceiver binds a UDP socket on port and returns a Receiver that
// invokes handler for every completed packet.
func NewReceiver(port int, isChunked func([]byte) (bool, bool), handler PacketHandler) (*Receiver, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &Receiver{conn: conn, handler: handler, isChunkedContinuation: isChunked}, nil
}

// Port returns the bound local UDP port.
func (r *Receiver) Port() int {
	return r.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close releases the UDP socket.
func (r *Receiver) Close() error {
	return r.conn.Close()
}

// Run reads datagrams until ctx is cancelled or the socket errors.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, 64*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_ = r.conn.SetReadDeadline(deadlineFromCtx(ctx))
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}

		r.handle(buf[:n])
	}
}

func (r *Receiver) handle(raw []byte) {
	hdr, offset, err := ParseHeader(raw)
	if err != nil {
		return
	}
	payload := raw[offset:]
	r.packetCount++

	chunked, completed := true, true
	if r.isChunkedContinuation != nil {
		chunked, completed = r.isChunkedContinuation(payload)
	}

	if chunked && !completed {
		if !r.cacheInit || hdr.Seq != r.cacheSeq {
			r.cache = append([]byte(nil), payload...)
			r.cacheSeq = hdr.Seq
			r.cacheInit = true
		} else {
			r.cache = append(r.cache, payload...)
		}
		return
	}

	out := payload
	if r.cacheInit && chunked {
		out = append(r.cache, payload...)
		r.cacheInit = false
		r.cache = nil
	}

	pkt := &Packet{Header: hdr, Payload: out, Chunked: chunked, Completed: true}
	if r.handler != nil {
		r.handler(pkt)
	}
}
