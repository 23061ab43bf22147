package cliapp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestProtectFlags(t *testing.T) {
	foo := &cli.StringFlag{Name: "foo", Value: "123"}
	bar := &cli.BoolFlag{Name: "bar"}
	out := ProtectFlags([]cli.Flag{foo, bar})
	require.Len(t, out, 2)

	fooCopy := out[0].(*cli.StringFlag)
	fooCopy.Value = "changed"
	require.Equal(t, "123", foo.Value, "original must not be mutated")
	require.NotSame(t, bar, out[1])
}

func TestProtectFlagsCopiesEveryKind(t *testing.T) {
	flags := []cli.Flag{
		&cli.PathFlag{Name: "path", Value: "./a"},
		&cli.DurationFlag{Name: "dur"},
		&cli.Uint64Flag{Name: "u64"},
		&cli.IntFlag{Name: "int"},
	}
	out := ProtectFlags(flags)
	for i := range flags {
		require.NotSame(t, flags[i], out[i])
		require.Equal(t, flags[i].Names(), out[i].Names())
	}
}

func TestProtectFlagsPanicsOnUnsupportedFlag(t *testing.T) {
	require.Panics(t, func() {
		ProtectFlags([]cli.Flag{&cli.Float64Flag{Name: "ratio"}})
	})
}
