package notify

import (
	"context"
	"sync"
	"time"

	"creditflow-backend/internal/infrastructure/logger"
)

var _ Notifier = (*Async)(nil)

// Async hands each event to its own goroutine so callers never wait on the
// downstream sink. Notify always returns nil; failures are logged.
type Async struct {
	next    Notifier
	log     logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, log logger.Logger, timeout time.Duration) *Async {
	if log == nil {
		log = logger.NewNop()
	}
	return &Async{next: next, log: log, timeout: timeout}
}

func (a *Async) Notify(ctx context.Context, ev Event) error {
	if a.next == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	detached := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		Send(detached, a.next, a.log, a.timeout, ev)
	}()
	return nil
}

// Wait blocks until every dispatched event has been delivered or dropped.
func (a *Async) Wait() { a.wg.Wait() }
