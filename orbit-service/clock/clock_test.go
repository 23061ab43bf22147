package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimulatedClock(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cl := NewSimulatedClock(start)
	require.Equal(t, start, cl.Now())

	got := <-cl.After(30 * time.Second)
	require.Equal(t, start.Add(30*time.Second), got)
	require.Equal(t, start.Add(30*time.Second), cl.Now())

	<-cl.After(time.Second)
	require.Equal(t, []time.Duration{30 * time.Second, time.Second}, cl.Sleeps())
}
