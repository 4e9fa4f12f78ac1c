// If you are AI: This file implements push relay functionality.
// Push relay subscribes to local stream and publishes to a peer RTMP origin.

package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"nonchalant/internal/core/bus"
	rtmpprotocol "nonchalant/internal/core/protocol/rtmp"
	"nonchalant/internal/metrics"
)

// PushTask implements push relay (subscribe local, publish remote).
type PushTask struct {
	*BaseTask
	backoff *metrics.Backoff
}

// NewPushTask creates a new push relay task.
func NewPushTask(registry *bus.Registry, app, name, remoteURL string, reconnect bool) *PushTask {
	return &PushTask{
		BaseTask: NewBaseTask(registry, app, name, remoteURL, reconnect),
		backoff:  metrics.NewBackoff(5 * time.Second),
	}
}

// Start starts the push relay task.
// Subscribes to the local stream and republishes every message to a peer
// RTMP origin via an outbound publish client (connect/createStream/publish,
// then raw audio/video writes).
func (t *PushTask) Start(ctx context.Context) error {
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

	streamKey := bus.NewStreamKey(t.App(), t.Name())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.StopChan():
			return nil
		default:
		}

		stream := t.Registry().Get(streamKey)
		if stream == nil || !stream.HasPublisher() {
			if !t.waitForPublisher(ctx, streamKey) {
				return nil
			}
			stream = t.Registry().Get(streamKey)
		}

		if err := t.runOnce(ctx, host, remoteApp, remoteStream, stream); err != nil {
			if !t.reconnect {
				return err
			}
			if t.backoff.Wait(ctx) != nil {
				return nil
			}
			continue
		}
		return nil
	}
}

func (t *PushTask) waitForPublisher(ctx context.Context, key bus.StreamKey) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.StopChan():
			return false
		case <-time.After(time.Second):
			if s := t.Registry().Get(key); s != nil && s.HasPublisher() {
				return true
			}
		}
	}
}

func (t *PushTask) runOnce(ctx context.Context, host, app, streamName string, stream *bus.Stream) error {
	client, err := rtmpprotocol.DialAndPublish(host, app, streamName, 5*time.Second, 5*time.Second)
	if err != nil {
		return fmt.Errorf("push relay connect: %w", err)
	}
	defer client.Close()

	subscriber, subID := stream.AttachSubscriber(1000, bus.BackpressureDropOldest)
	defer stream.DetachSubscriber(subID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.StopChan():
			return nil
		default:
		}

		msg, ok := subscriber.Buffer().Read()
		if !ok {
			select {
			case <-time.After(10 * time.Millisecond):
				continue
			case <-ctx.Done():
				return ctx.Err()
			case <-t.StopChan():
				return nil
			}
		}

		var writeErr error
		switch msg.Type {
		case bus.MessageTypeAudio:
			writeErr = client.WriteAudio(msg.Timestamp, msg.Payload)
		case bus.MessageTypeVideo:
			writeErr = client.WriteVideo(msg.Timestamp, msg.Payload)
		}
		if writeErr != nil {
			return fmt.Errorf("push relay write: %w", writeErr)
		}
	}
}

// splitAppStream derives the remote app/stream from the target URL's path,
// falling back to the local app/name when the path carries only one
// segment or none.
func splitAppStream(path, fallbackApp, fallbackStream string) (string, string) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return fallbackApp, fallbackStream
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], fallbackStream
}
