package ioutil

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Spinner is an indeterminate progress indicator, ticked once per poll while
// waiting for an external effect to become observable.
type Spinner interface {
	Tick(desc string)
	Finish()
}

// NewSpinner returns a terminal spinner when w is a terminal, and a no-op otherwise,
// so redirected output only carries the structured log lines.
func NewSpinner(w io.Writer, desc string) Spinner {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return NoopSpinner{}
	}
	return &barSpinner{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)}
}

type barSpinner struct {
	bar *progressbar.ProgressBar
}

func (s *barSpinner) Tick(desc string) {
	if desc != "" {
		s.bar.Describe(desc)
	}
	_ = s.bar.Add(1)
}

func (s *barSpinner) Finish() {
	_ = s.bar.Finish()
}

type NoopSpinner struct{}

func (NoopSpinner) Tick(string) {}

func (NoopSpinner) Finish() {}
