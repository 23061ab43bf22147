package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"
)

func runFlags(t *testing.T, args ...string) CLIConfig {
	app := cli.NewApp()
	app.Flags = CLIFlags("TEST")
	var cfg CLIConfig
	app.Action = func(ctx *cli.Context) error {
		cfg = ReadCLIConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"app"}, args...)))
	return cfg
}

func TestReadCLIConfig(t *testing.T) {
	cfg := runFlags(t, "--log.level=debug", "--log.format=JSON", "--log.color=false")
	require.Equal(t, log.LevelDebug, cfg.Level)
	require.Equal(t, FormatJSON, cfg.Format)
	require.False(t, cfg.Color)
	require.NoError(t, cfg.Check())
}

func TestReadCLIConfigDefaults(t *testing.T) {
	cfg := runFlags(t)
	require.Equal(t, log.LevelInfo, cfg.Level)
	require.Equal(t, FormatText, cfg.Format)
}

func TestReadCLIConfigInvalidLevel(t *testing.T) {
	cfg := runFlags(t, "--log.level=bogus")
	require.ErrorContains(t, cfg.Check(), `unknown log level: "bogus"`)

	cfg = runFlags(t, "--log.format=yaml")
	require.ErrorContains(t, cfg.Check(), "unrecognized log format")
}

func TestFormatCheck(t *testing.T) {
	require.Error(t, FormatType("yaml").Check())
	require.NoError(t, FormatLogFmt.Check())
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"trace":   log.LevelTrace,
		"WARNING": log.LevelWarn,
		" error ": log.LevelError,
		"crit":    log.LevelCrit,
	} {
		lvl, err := LevelFromString(in)
		require.NoError(t, err, in)
		require.Equal(t, want, lvl, in)
	}
	_, err := LevelFromString("verbose")
	require.ErrorContains(t, err, "unknown log level")
}

func TestJSONHandlerRendersBigNumbers(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewLogger(&buf, CLIConfig{Level: log.LevelInfo, Format: FormatJSON})
	lgr.Info("amounts", "big", big.NewInt(42), "u256", uint256.NewInt(7), "nilbig", (*big.Int)(nil))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Equal(t, "42", out["big"])
	require.Equal(t, "7", out["u256"])
	require.Equal(t, "<nil>", out["nilbig"])
	require.Equal(t, "info", out["lvl"])
	require.Contains(t, out, "t")
}

func TestLogfmtHandlerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewLogger(&buf, CLIConfig{Level: log.LevelWarn, Format: FormatLogFmt})
	lgr.Info("hidden")
	lgr.Warn("shown", "k", "v")
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.Contains(out, "msg=shown"))
	require.Contains(t, out, "k=v")
}
