package ioutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSpinnerNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "waiting")
	require.IsType(t, NoopSpinner{}, s)
	s.Tick("still waiting")
	s.Finish()
	require.Empty(t, buf.String())
}
