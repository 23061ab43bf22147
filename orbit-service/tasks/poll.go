package tasks

import (
	"context"
	"time"

	"github.com/orbit-stack/orbit-stack/orbit-service/clock"
)

// Predicate reports whether the awaited condition holds.
// An error aborts the wait: a failing network call is not a "not yet".
type Predicate func(ctx context.Context) (bool, error)

// MissFunc is invoked after every failed check, with the number of misses so far (1-based).
type MissFunc func(misses int)

// Waiter polls a predicate at a fixed interval until it holds.
// There is no upper bound on the number of polls; callers that want a timeout
// must put a deadline on the context.
type Waiter struct {
	Clock    clock.Clock
	Interval time.Duration
}

func NewWaiter(cl clock.Clock, interval time.Duration) *Waiter {
	return &Waiter{Clock: cl, Interval: interval}
}

// WaitUntil evaluates pred until it returns true. After each false result onMiss is called
// (if non-nil) and the waiter sleeps for the interval before polling again.
// It returns nil only once pred holds.
func (w *Waiter) WaitUntil(ctx context.Context, pred Predicate, onMiss MissFunc) error {
	cl := w.Clock
	if cl == nil {
		cl = clock.SystemClock
	}
	for misses := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := pred(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		misses++
		if onMiss != nil {
			onMiss(misses)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cl.After(w.Interval):
		}
	}
}

// WaitUntil is a convenience wrapper around Waiter.WaitUntil.
func WaitUntil(ctx context.Context, cl clock.Clock, interval time.Duration, pred Predicate, onMiss MissFunc) error {
	return NewWaiter(cl, interval).WaitUntil(ctx, pred, onMiss)
}
