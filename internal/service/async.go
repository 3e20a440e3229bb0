package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/product-review-hub/internal/queue"
)

// EventSink is anything that can deliver an activity event.
type EventSink interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// Async hands events to Sink on a separate goroutine so a slow broker never
// holds up a response.  The request context only contributes its values;
// each delivery gets its own Timeout.
type Async struct {
	Sink    EventSink
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewAsync(sink EventSink, timeout time.Duration) *Async {
	return &Async{Sink: sink, Timeout: timeout}
}

// Publish stamps ev and returns immediately.
func (a *Async) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		_ = a.Sink.Publish(ctx, ev)
	}()
	return nil
}

// Wait blocks until every event handed to Publish has been delivered or
// has failed.
func (a *Async) Wait() { a.wg.Wait() }
