package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestApp(out *bytes.Buffer) *cli.App {
	app := NewApp("v0.0.0-test")
	app.Writer = out
	app.ErrWriter = out
	return app
}

func TestStatusWithoutState(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"orbit-deployer", "status", "--state-file", filepath.Join(dir, "resumeState.json")})
	require.NoError(t, err)
	require.Contains(t, out.String(), "No resume state")
}

func TestCleanRequiresConfirmation(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "resumeState.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{"version":1,"chainId":1}`), 0o644))

	var out bytes.Buffer
	require.Error(t, newTestApp(&out).Run([]string{"orbit-deployer", "clean", "--state-file", statePath}))
	require.FileExists(t, statePath)

	require.NoError(t, newTestApp(&out).Run([]string{"orbit-deployer", "clean", "--state-file", statePath, "--yes"}))
	require.NoFileExists(t, statePath)
}

func TestApplyRejectsMissingFlags(t *testing.T) {
	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"orbit-deployer", "apply", "--config", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "private key must be specified")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestApp(&out).Run([]string{"orbit-deployer", "version"}))
	require.Equal(t, "v0.0.0-test\n", out.String())
}

func TestApplyReadsLegacyOrbitRPCVariable(t *testing.T) {
	t.Setenv("L2_RPC_URL", "http://127.0.0.1:1")
	t.Setenv("L4_RPC_URL", "http://127.0.0.1:2")

	var out bytes.Buffer
	err := newTestApp(&out).Run([]string{"orbit-deployer", "apply", "--config", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "private key must be specified")
	require.NotContains(t, err.Error(), "orbit chain RPC URL must be specified")
	require.NotContains(t, err.Error(), "parent chain RPC URL must be specified")
}
