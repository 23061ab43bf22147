// Package clock abstracts time so that waiting code can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	// After waits for the duration to elapse and then sends the current time on the returned channel.
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SimulatedClock never blocks: After advances the simulated time by d and fires immediately.
// It records every requested sleep so tests can assert on the waiting schedule.
type SimulatedClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewSimulatedClock(start time.Time) *SimulatedClock {
	return &SimulatedClock{now: start}
}

func (s *SimulatedClock) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *SimulatedClock) After(d time.Duration) <-chan time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
	s.sleeps = append(s.sleeps, d)
	ch := make(chan time.Time, 1)
	ch <- s.now
	return ch
}

// Sleeps returns a copy of all durations passed to After.
func (s *SimulatedClock) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}
