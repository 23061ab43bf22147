package deployer

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

func CleanCLI() func(cliCtx *cli.Context) error {
	return func(cliCtx *cli.Context) error {
		return Clean(afero.NewOsFs(), cliCtx.Path(StateFileFlagName), cliCtx.Bool(YesFlagName), cliCtx.App.Writer)
	}
}

// Clean deletes the resume state, so the next apply starts from the first step.
// Steps already executed on chain will then be executed again.
func Clean(fs afero.Fs, statePath string, confirmed bool, w io.Writer) error {
	store := state.NewStore(fs, statePath)
	exists, err := store.Exists()
	if err != nil {
		return fmt.Errorf("failed to check resume state: %w", err)
	}
	if !exists {
		_, _ = fmt.Fprintf(w, "No resume state at %s.\n", statePath)
		return nil
	}
	if !confirmed {
		return fmt.Errorf("refusing to delete %s without --%s: the next apply would repeat funding and deposits", statePath, YesFlagName)
	}
	if err := store.Remove(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Removed %s.\n", statePath)
	return nil
}
