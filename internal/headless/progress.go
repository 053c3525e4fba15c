package headless

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter shows the cosmetic progress of one attempt.
type Reporter interface {
	Start(name string)
	Set(percent float64)
	Finish(ok bool)
}

// NewReporter returns a progress bar on w when enabled and w is a
// terminal, and a no-op reporter otherwise.
func NewReporter(enabled bool, w *os.File) Reporter {
	if enabled && IsInteractive(w) {
		return NewBarReporter(w)
	}
	return NoOpReporter{}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// BarReporter draws a progressbar on a writer.
type BarReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBarReporter creates a reporter drawing on w.
func NewBarReporter(w io.Writer) *BarReporter {
	return &BarReporter{w: w}
}

// Start draws an empty bar labelled with the document name.
func (r *BarReporter) Start(name string) {
	r.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("Processing "+name),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
	_ = r.bar.RenderBlank()
}

// Set moves the bar to percent.
func (r *BarReporter) Set(percent float64) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Set(int(percent))
}

// Finish fills the bar on success and removes it either way.
func (r *BarReporter) Finish(ok bool) {
	if r.bar == nil {
		return
	}
	if ok {
		_ = r.bar.Set(100)
	}
	_ = r.bar.Finish()
	_ = r.bar.Clear()
	r.bar = nil
}

// NoOpReporter discards progress.
type NoOpReporter struct{}

// Start is a no-op
func (NoOpReporter) Start(string) {}

// Set is a no-op
func (NoOpReporter) Set(float64) {}

// Finish is a no-op
func (NoOpReporter) Finish(bool) {}
