package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orbit-stack/orbit-stack/orbit-service/clock"
)

func countingPredicate(trueOn int) (Predicate, *int) {
	calls := new(int)
	return func(ctx context.Context) (bool, error) {
		*calls++
		return *calls >= trueOn, nil
	}, calls
}

func TestWaitUntilConverges(t *testing.T) {
	for _, n := range []int{1, 2, 7} {
		cl := clock.NewSimulatedClock(time.Unix(0, 0))
		pred, calls := countingPredicate(n)
		var misses []int
		err := WaitUntil(context.Background(), cl, 30*time.Second, pred, func(m int) {
			misses = append(misses, m)
		})
		require.NoError(t, err)
		require.Equal(t, n, *calls, "predicate evaluated exactly N times")
		require.Len(t, misses, n-1, "miss callback invoked N-1 times")
		for i, m := range misses {
			require.Equal(t, i+1, m)
		}
		require.Len(t, cl.Sleeps(), n-1)
		for _, d := range cl.Sleeps() {
			require.Equal(t, 30*time.Second, d)
		}
	}
}

func TestWaitUntilNilMissFunc(t *testing.T) {
	pred, calls := countingPredicate(3)
	w := NewWaiter(clock.NewSimulatedClock(time.Unix(0, 0)), time.Second)
	require.NoError(t, w.WaitUntil(context.Background(), pred, nil))
	require.Equal(t, 3, *calls)
}

func TestWaitUntilPredicateError(t *testing.T) {
	boom := errors.New("rpc unavailable")
	calls := 0
	err := WaitUntil(context.Background(), clock.NewSimulatedClock(time.Unix(0, 0)), time.Second,
		func(ctx context.Context) (bool, error) {
			calls++
			if calls == 2 {
				return false, boom
			}
			return false, nil
		}, nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}

func TestWaitUntilContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	misses := 0
	err := WaitUntil(ctx, clock.NewSimulatedClock(time.Unix(0, 0)), time.Second,
		func(ctx context.Context) (bool, error) { return false, nil },
		func(m int) {
			misses = m
			if m == 4 {
				cancel()
			}
		})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 4, misses)
}

func TestWaitUntilRealClock(t *testing.T) {
	pred, calls := countingPredicate(2)
	w := &Waiter{Interval: time.Millisecond}
	require.NoError(t, w.WaitUntil(context.Background(), pred, nil))
	require.Equal(t, 2, *calls)
}
