// If you are AI: This file implements the async-call worker (C4).
// It isolates blocking outbound calls (HTTP callback hooks) on a single
// dedicated goroutine so publisher goroutines are never mutated concurrently
// with packet reception.

package asyncworker

import "sync"

// Item is a unit of blocking work. Execute may block; Describe renders a
// human-readable summary for logging the outcome.
type Item interface {
	Execute() error
	Describe() string
}

// OutcomeFunc is called with the result of each executed item. It must not
// block; use it for logging only.
type OutcomeFunc func(item Item, err error)

// Worker consumes items strictly FIFO on one goroutine.
type Worker struct {
	queue  chan Item
	onDone OutcomeFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New starts a Worker with the given queue depth. onDone may be nil.
func New(queueDepth int, onDone OutcomeFunc) *Worker {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	w := &Worker{
		queue:  make(chan Item, queueDepth),
		onDone: onDone,
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for item := range w.queue {
		err := item.Execute()
		if w.onDone != nil {
			w.onDone(item, err)
		}
	}
}

// Execute enqueues item. After Stop, enqueues are silently dropped.
func (w *Worker) Execute(item Item) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.queue <- item:
	default:
		// queue full: drop rather than block the caller indefinitely.
	}
}

// Stop drains the current batch, then exits. New enqueues after Stop are
// silently dropped.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	w.wg.Wait()
}
