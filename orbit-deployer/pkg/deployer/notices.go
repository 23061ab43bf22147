package deployer

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/orbit-stack/orbit-stack/orbit-deployer/pkg/deployer/pipeline"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	hintColor    = color.New(color.FgYellow)
)

func printSuccess(w io.Writer, results []pipeline.StepResult, statePath string) {
	executed := 0
	for _, r := range results {
		if r.Outcome == pipeline.StepSucceeded {
			executed++
		}
	}
	_, _ = successColor.Fprintln(w, "Orbit chain deployment complete.")
	_, _ = fmt.Fprintf(w, "%d step(s) executed, %d already done. Progress is recorded in %s.\n", executed, len(results)-executed, statePath)
}

func printFailure(w io.Writer, err error) {
	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) {
		_, _ = failureColor.Fprintf(w, "Orbit chain deployment failed: %v\n", err)
		return
	}
	_, _ = failureColor.Fprintf(w, "Step %s failed: %v\n", stepErr.Step, stepErr.Err)
	_, _ = hintColor.Fprintf(w, "Completed steps are recorded in %s. Fix the problem and run apply again to resume at %s.\n",
		stepErr.StatePath, stepErr.Step)
}
