package deployer

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/pipeline"
	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/state"
)

func StatusCLI() func(cliCtx *cli.Context) error {
	return func(cliCtx *cli.Context) error {
		return Status(afero.NewOsFs(), cliCtx.Path(StateFileFlagName), cliCtx.Path(ConfigFlagName), cliCtx.App.Writer)
	}
}

// Status renders the progress recorded in the state file. If the setup config can be read,
// a state recorded for another chain is reported as such, since apply would discard it.
func Status(fs afero.Fs, statePath, configPath string, w io.Writer) error {
	store := state.NewStore(fs, statePath)
	exists, err := store.Exists()
	if err != nil {
		return fmt.Errorf("failed to check resume state: %w", err)
	}
	if !exists {
		_, _ = fmt.Fprintf(w, "No resume state at %s, apply will start from the first step.\n", statePath)
		return nil
	}
	st, err := store.Load()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Resume state: %s\n", statePath)
	_, _ = fmt.Fprintf(w, "Chain ID: %d\n", st.ChainID)
	if st.LastRunID != "" {
		_, _ = fmt.Fprintf(w, "Last run: %s\n", st.LastRunID)
	}
	if configPath != "" {
		setup, err := state.ReadConfig(fs, configPath)
		switch {
		case errors.Is(err, state.ErrNoConfig):
		case err != nil:
			return err
		case setup.ChainID != st.ChainID:
			_, _ = hintColor.Fprintf(w, "The setup config is for chain %d, apply will discard this state and start over.\n", setup.ChainID)
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Step", "Status"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	next, pending := pipeline.NextPending(pipeline.Definitions(), st)
	for i, step := range pipeline.Definitions() {
		status := "pending"
		switch {
		case step.Done(st):
			status = "done"
		case pending && step.Name == next.Name:
			status = "next"
		}
		table.Append([]string{strconv.Itoa(i + 1), step.Name, status})
	}
	table.Render()

	if st.LastError != "" {
		_, _ = failureColor.Fprintf(w, "Last error: %s\n", st.LastError)
	}
	return nil
}
