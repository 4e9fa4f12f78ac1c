// If you are AI: Tests for the outbound RTMP publish client against a fake server loop.

package rtmp

import (
	"net"
	"testing"
	"time"
)

// fakeServer performs the server handshake then counts complete command
// messages it reads, replying with an empty command response to each so
// the client's awaitResult unblocks.
func fakeServer(t *testing.T, ln net.Listener, gotCommands chan<- byte) {
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if err := PerformServerHandshake(conn); err != nil {
		t.Errorf("server handshake: %v", err)
		return
	}

	parser := NewChunkParser()
	for i := 0; i < 3; i++ {
		csID, err := parser.ReadChunk(conn)
		if err != nil {
			t.Errorf("server read chunk %d: %v", i, err)
			return
		}
		_, msgType, _, _, complete := parser.GetCompleteMessage(csID)
		if !complete {
			i--
			continue
		}
		gotCommands <- msgType
		// Minimal ack so the client's awaitResult sees a complete message.
		if err := WriteChunk(conn, 3, MessageTypeCommandAMF0, 0, 0, []byte{0x05}, DefaultChunkSize); err != nil {
			t.Errorf("server write ack: %v", err)
			return
		}
	}
}

func TestDialAndPublishIssuesConnectCreateStreamPublish(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	gotCommands := make(chan byte, 3)
	go fakeServer(t, ln, gotCommands)

	client, err := DialAndPublish(ln.Addr().String(), "live", "mystream", 2*time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("DialAndPublish() error = %v", err)
	}
	defer client.Close()

	for i := 0; i < 3; i++ {
		select {
		case msgType := <-gotCommands:
			if msgType != MessageTypeCommandAMF0 {
				t.Fatalf("command %d: msgType = %d, want %d", i, msgType, MessageTypeCommandAMF0)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for command %d", i)
		}
	}
}
