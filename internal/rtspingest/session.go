// If you are AI: This file implements the RTSP session state machine (C8):
// OPTIONS/ANNOUNCE/SETUP/RECORD over the TCP control connection, RTP
// reception over UDP, and routing decoded frames into the RTSP-to-RTMP
// transmuxer (C9, transmux.go). Grounded on srs_app_rtsp.cpp's
// SrsRtspConn::do_cycle/cycle/on_rtp_packet.
//
// Implements connmgr.Conn so a Session can be supervised the same way
// every other inbound connection is (C3).

package rtspingest

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"nonchalant/internal/config"
	"nonchalant/internal/rtspingest/avcache"
	"nonchalant/internal/rtspingest/codec"
	"nonchalant/internal/rtspingest/jitter"
	"nonchalant/internal/rtspingest/portpool"
	"nonchalant/internal/rtspingest/rtp"
)

// Session owns one RTSP publisher connection from ANNOUNCE through
// TEARDOWN (or the connection simply dropping).
type Session struct {
	conn   net.Conn
	reader *bufio.Reader
	cfg    config.RTSPConfig
	pool   *portpool.Pool

	mu        sync.Mutex
	sessionID string

	sdp    *SDP
	tcUrl  string
	stream string

	videoRTP *rtp.Receiver
	audioRTP *rtp.Receiver

	vjitter *jitter.Corrector
	ajitter *jitter.Corrector
	avc     *avcache.Cache
	aacCfg  *codec.AACConfig

	transmux *transmuxer
}

// NewSession wraps conn in an RTSP session, ready to Serve.
func NewSession(conn net.Conn, cfg config.RTSPConfig, pool *portpool.Pool) *Session {
	return &Session{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		cfg:     cfg,
		pool:    pool,
		vjitter: jitter.New(),
		ajitter: jitter.New(),
		avc:     avcache.New(),
	}
}

// DoCycle implements connmgr.Conn: read and handle RTSP requests until the
// connection closes or ctx is cancelled.
func (s *Session) DoCycle(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		req, err := ReadRequest(s.reader)
		if err != nil {
			return err
		}
		if err := s.handleRequest(req); err != nil {
			return fmt.Errorf("rtsp handle %s: %w", req.Method, err)
		}
	}
}

// Close releases RTP ports and the outbound RTMP publish connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.videoRTP != nil {
		s.videoRTP.Close()
		s.pool.Free(s.videoRTP.Port(), s.videoRTP.Port()+2)
		s.videoRTP = nil
	}
	if s.audioRTP != nil {
		s.audioRTP.Close()
		s.pool.Free(s.audioRTP.Port(), s.audioRTP.Port()+2)
		s.audioRTP = nil
	}
	if s.transmux != nil {
		s.transmux.close()
		s.transmux = nil
	}
	return s.conn.Close()
}

func (s *Session) handleRequest(req *Request) error {
	switch {
	case req.IsOptions():
		return s.handleOptions(req)
	case req.IsAnnounce():
		return s.handleAnnounce(req)
	case req.IsSetup():
		return s.handleSetup(req)
	case req.IsRecord():
		return s.handleRecord(req)
	default:
		return fmt.Errorf("unsupported rtsp method %q", req.Method)
	}
}

func (s *Session) handleOptions(req *Request) error {
	extra := map[string]string{"Public": "OPTIONS, ANNOUNCE, SETUP, RECORD, TEARDOWN"}
	return WriteResponse(s.conn, 200, req.CSeq, s.sessionID, extra, nil)
}

func (s *Session) handleAnnounce(req *Request) error {
	sdp, err := ParseSDP(req.Body)
	if err != nil {
		return err
	}
	s.sdp = sdp

	if sdp.HasAudio {
		aacCfg, err := codec.ParseAACConfig(sdp.AudioSpecificConf)
		if err != nil {
			return err
		}
		s.aacCfg = aacCfg
	}

	app, stream := tcURLToAppStream(req.URI)
	s.tcUrl = app
	s.stream = stream

	return WriteResponse(s.conn, 200, req.CSeq, s.sessionID, nil, nil)
}

func (s *Session) handleSetup(req *Request) error {
	if s.sdp == nil {
		return fmt.Errorf("setup before announce")
	}

	transportHeader, ok := req.Headers["Transport"]
	if !ok {
		return fmt.Errorf("setup missing Transport header")
	}
	transport, err := ParseTransport(transportHeader)
	if err != nil {
		return err
	}

	trackID := setupTrackID(req.URI, s.sdp)

	lo, err := s.pool.Alloc()
	if err != nil {
		return err
	}

	handler := func(pkt *rtp.Packet) { s.onRTPPacket(trackID, pkt) }
	receiver, err := rtp.NewReceiver(lo, isChunkedRTPPacket, handler)
	if err != nil {
		s.pool.Free(lo, lo+2)
		return err
	}

	s.mu.Lock()
	if trackID == s.sdp.VideoStreamID {
		s.videoRTP = receiver
	} else {
		s.audioRTP = receiver
	}
	if s.sessionID == "" {
		s.sessionID = newSessionID()
	}
	s.mu.Unlock()

	go receiver.Run(context.Background())

	extra := map[string]string{
		"Transport": fmt.Sprintf("RTP/AVP;unicast;client_port=%d-%d;server_port=%d-%d",
			transport.ClientPortMin, transport.ClientPortMax, lo, lo+1),
	}
	return WriteResponse(s.conn, 200, req.CSeq, s.sessionID, extra, nil)
}

func (s *Session) handleRecord(req *Request) error {
	return WriteResponse(s.conn, 200, req.CSeq, s.sessionID, nil, nil)
}

// onRTPPacket is the RTSP equivalent of SrsRtspConn::on_rtp_packet: route
// by track id, jitter-correct the timestamp, then hand off to the
// transmuxer. Errors are logged rather than propagated since a single bad
// RTP packet shouldn't tear down the whole session.
func (s *Session) onRTPPacket(trackID int, pkt *rtp.Packet) {
	tm, err := s.transmuxer()
	if err != nil {
		return
	}

	if trackID == s.sdp.VideoStreamID {
		pts := s.vjitter.Correct(pkt.Timestamp)
		// dts≈pts: a documented approximation carried over from the
		// original SRS source (see DESIGN.md Open Question #1).
		tm.onVideo(pkt.Payload, pts, pts)
	} else {
		pts := s.ajitter.Correct(pkt.Timestamp)
		tm.onAudio(pkt.Payload, pts)
	}
}

// transmuxer lazily connects the outbound RTMP publish client on the first
// RTP packet, matching srs_app_rtsp.cpp's on_rtp_packet -> connect() (not
// RECORD, which never sees real media).
func (s *Session) transmuxer() (*transmuxer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transmux != nil {
		return s.transmux, nil
	}

	tm, err := newTransmuxer(s.cfg, s.tcUrl, s.stream, s.sdp, s.aacCfg, s.avc, s.vjitter)
	if err != nil {
		return nil, err
	}
	s.transmux = tm
	return tm, nil
}

// isChunkedRTPPacket is the classifier the RTP receiver (C5) uses to
// decide whether a payload is a reassembly continuation. This ingest path
// treats every UDP datagram as a complete RTP packet (no FU-A
// defragmentation), matching the single-datagram-per-packet case this
// bridge targets.
func isChunkedRTPPacket(payload []byte) (chunked, completed bool) { return false, true }

func tcURLToAppStream(uri string) (app, stream string) {
	trimmed := strings.TrimSuffix(uri, ".sdp")
	return splitRTSPPath(trimmed)
}

// splitRTSPPath extracts app/stream from an rtsp://host/app/stream URI,
// mirroring srs_parse_rtmp_url's app/stream split.
func splitRTSPPath(uri string) (app, stream string) {
	// Strip scheme and host.
	rest := uri
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+len("://"):]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			rest = rest[slash+1:]
		} else {
			rest = ""
		}
	}
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return rest[:slash], rest[slash+1:]
	}
	return rest, ""
}

// setupTrackID extracts the track id a SETUP request targets, from either
// the SDP-declared stream ids or the URI's trailing trackID/streamid.
func setupTrackID(uri string, sdp *SDP) int {
	id, err := extractTrackID(uri)
	if err != nil {
		return sdp.VideoStreamID
	}
	return id
}

// newSessionID generates a random 8-character session token, replacing
// SRS's literal "O9EaZ4bf" placeholder (see DESIGN.md Open Question #2).
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
