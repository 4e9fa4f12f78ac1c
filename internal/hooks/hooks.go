// If you are AI: This file implements HTTP callback hooks (on_publish,
// on_unpublish, on_play), fired through the C4 async worker so the blocking
// outbound POST never stalls a publisher goroutine. Grounded on SRS's
// srs_app_http_hooks.hpp and on spec.md's own C4 rationale.

package hooks

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nonchalant/internal/asyncworker"
	"nonchalant/internal/config"
)

// Event names a stream lifecycle callback.
type Event string

const (
	EventPublish   Event = "on_publish"
	EventUnpublish Event = "on_unpublish"
	EventPlay      Event = "on_play"
)

// Payload is the JSON body posted to each configured callback URL.
type Payload struct {
	Event  Event  `json:"event"`
	App    string `json:"app"`
	Stream string `json:"stream"`
	PeerIP string `json:"peer_ip,omitempty"`
}

// Dispatcher fires configured callback URLs through an asyncworker.Worker.
type Dispatcher struct {
	urls   map[Event][]string
	worker *asyncworker.Worker
	client *http.Client
}

// New builds a Dispatcher from configuration, queuing callbacks on worker.
// worker must already be running (see asyncworker.New).
func New(cfg config.HooksConfig, worker *asyncworker.Worker) *Dispatcher {
	return &Dispatcher{
		urls: map[Event][]string{
			EventPublish:   cfg.OnPublish,
			EventUnpublish: cfg.OnUnpublish,
			EventPlay:      cfg.OnPlay,
		},
		worker: worker,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Fire enqueues one callItem per configured URL for event. Non-blocking;
// the actual HTTP POST happens on the async worker's goroutine.
func (d *Dispatcher) Fire(event Event, app, stream, peerIP string) {
	urls := d.urls[event]
	if len(urls) == 0 {
		return
	}
	payload := Payload{Event: event, App: app, Stream: stream, PeerIP: peerIP}
	for _, url := range urls {
		d.worker.Execute(&callItem{client: d.client, url: url, payload: payload})
	}
}

// callItem posts payload to url. It implements asyncworker.Item.
type callItem struct {
	client  *http.Client
	url     string
	payload Payload
}

func (c *callItem) Execute() error {
	body, err := json.Marshal(c.payload)
	if err != nil {
		return err
	}
	resp, err := c.client.Post(c.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &httpStatusError{url: c.url, status: resp.StatusCode}
	}
	return nil
}

func (c *callItem) Describe() string {
	return string(c.payload.Event) + " -> " + c.url
}

type httpStatusError struct {
	url    string
	status int
}

func (e *httpStatusError) Error() string {
	return "hook call to " + e.url + " returned non-2xx status"
}

// LogOutcome is a ready-made asyncworker.OutcomeFunc that logs hook failures.
func LogOutcome(item asyncworker.Item, err error) {
	if err != nil {
		log.Printf("hook failed: %s: %v", item.Describe(), err)
	}
}
