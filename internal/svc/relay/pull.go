// If you are AI: This file implements pull relay functionality.
// Pull relay connects to a remote RTMP server, plays a stream, and
// republishes it locally on the stream bus.

package relay

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"nonchalant/internal/core/bus"
	"nonchalant/internal/core/protocol/amf0"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
	"nonchalant/internal/metrics"
)

// PullTask implements pull relay (connect to remote, play, republish locally).
type PullTask struct {
	*BaseTask
	backoff *metrics.Backoff
}

// NewPullTask creates a new pull relay task.
func NewPullTask(registry *bus.Registry, app, name, remoteURL string, reconnect bool) *PullTask {
	return &PullTask{
		BaseTask: NewBaseTask(registry, app, name, remoteURL, reconnect),
		backoff:  metrics.NewBackoff(5 * time.Second),
	}
}

// Start starts the pull relay task.
func (t *PullTask) Start(ctx context.Context) error {
	t.SetRunning(true)
	defer t.SetRunning(false)

	u, err := url.Parse(t.RemoteURL())
	if err != nil {
		return fmt.Errorf("invalid remote URL: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		host += ":1935"
	}
	remoteApp, remoteStream := splitAppStream(u.Path, t.App(), t.Name())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.StopChan():
			return nil
		default:
		}

		err := t.runOnce(ctx, host, remoteApp, remoteStream)
		if err == nil {
			return nil
		}
		if !t.reconnect {
			return err
		}
		if t.backoff.Wait(ctx) != nil {
			return nil
		}
	}
}

func (t *PullTask) runOnce(ctx context.Context, host, remoteApp, remoteStream string) error {
	conn, err := net.DialTimeout("tcp", host, 5*time.Second)
	if err != nil {
		return fmt.Errorf("pull relay dial: %w", err)
	}
	defer conn.Close()

	if err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		return fmt.Errorf("pull relay handshake: %w", err)
	}

	session := rtmpprotocol.NewSession(conn)
	if err := issuePlayCommands(session, remoteApp, remoteStream); err != nil {
		return fmt.Errorf("pull relay play: %w", err)
	}

	streamKey := bus.NewStreamKey(t.App(), t.Name())
	stream, _ := t.Registry().GetOrCreate(streamKey)

	publisherID := uint64(1)
	if !stream.AttachPublisher(publisherID) {
		return fmt.Errorf("pull relay: local stream already has a publisher")
	}
	defer stream.DetachPublisher()

	done := make(chan error, 1)
	go func() {
		for {
			csID, err := session.ReadChunk()
			if err != nil {
				done <- err
				return
			}
			body, msgType, timestamp, _, complete := session.GetCompleteMessage(csID)
			if !complete {
				continue
			}
			switch msgType {
			case rtmpprotocol.MessageTypeAudio:
				stream.Publish(newMediaMessage(bus.MessageTypeAudio, timestamp, body))
			case rtmpprotocol.MessageTypeVideo:
				stream.Publish(newMediaMessage(bus.MessageTypeVideo, timestamp, body))
			case rtmpprotocol.MessageTypeDataAMF0:
				stream.Publish(newMediaMessage(bus.MessageTypeMetadata, timestamp, body))
			}
		}
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.StopChan():
		return nil
	}
}

// issuePlayCommands performs connect/createStream/play against the session,
// the minimal command exchange a peer RTMP server requires before it starts
// sending media.
func issuePlayCommands(session *rtmpprotocol.Session, app, streamName string) error {
	cmdObj := amf0.Object{"app": app}
	connectBody, err := amf0.EncodeSequence("connect", float64(1), cmdObj)
	if err != nil {
		return err
	}
	if err := session.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, connectBody); err != nil {
		return err
	}
	if err := awaitOne(session); err != nil {
		return err
	}

	createStreamBody, err := amf0.EncodeSequence("createStream", float64(2), nil)
	if err != nil {
		return err
	}
	if err := session.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, createStreamBody); err != nil {
		return err
	}
	if err := awaitOne(session); err != nil {
		return err
	}

	playBody, err := amf0.EncodeSequence("play", float64(3), nil, streamName)
	if err != nil {
		return err
	}
	return session.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 1, playBody)
}

// awaitOne blocks until one complete message has been reassembled, treating
// its arrival as acknowledgement of the previously sent command.
func awaitOne(session *rtmpprotocol.Session) error {
	for {
		csID, err := session.ReadChunk()
		if err != nil {
			return err
		}
		if _, _, _, _, complete := session.GetCompleteMessage(csID); complete {
			return nil
		}
	}
}

func newMediaMessage(t bus.MessageType, timestamp uint32, payload []byte) *bus.MediaMessage {
	msg := bus.AcquireMessage()
	msg.Type = t
	msg.Timestamp = timestamp
	msg.SetPayload(payload)
	return msg
}
