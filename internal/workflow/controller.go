// Package workflow implements the upload/analysis state machine that drives
// one compliance check at a time: file selection, submission, cosmetic
// progress, completion, failure, and reset.
//
// The Controller is meant to live inside a Bubble Tea program. All of its
// methods must be called from the program's Update loop; the asynchronous
// work it starts (the upload and the progress timer) only ever reports back
// through messages passed to Update.
package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

// Uploader sends a document to the analysis service.
// *analysis.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*compliance.Report, error)
}

// Config holds the Controller's collaborators.
type Config struct {
	Uploader Uploader
	Progress ProgressConfig
	Step     StepFunc // defaults to a uniform random step
	Logger   *log.Logger
}

// Controller owns the workflow state. It is the single writer of every
// field below.
type Controller struct {
	uploader Uploader
	progCfg  ProgressConfig
	step     StepFunc
	logger   *log.Logger

	state    State
	file     *SelectedFile
	progress float64
	err      error
	report   *compliance.Report
	view     *compliance.View
	attempt  *attempt
	stale    int // late responses discarded
}

// attempt is the scoped resource held while Analyzing.
type attempt struct {
	id      uuid.UUID
	file    SelectedFile
	task    progressTask
	cancel  context.CancelFunc
	started time.Time
}

// NewController creates a Controller in the Idle state.
func NewController(cfg Config) *Controller {
	if cfg.Step == nil {
		cfg.Step = randomStep
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		uploader: cfg.Uploader,
		progCfg:  cfg.Progress.normalized(),
		step:     cfg.Step,
		logger:   cfg.Logger,
	}
}

// State returns the current workflow state.
func (c *Controller) State() State { return c.state }

// File returns the selected file, or nil.
func (c *Controller) File() *SelectedFile { return c.file }

// Progress returns the cosmetic progress estimate in [0, 100].
func (c *Controller) Progress() float64 { return c.progress }

// Err returns the current error, or nil.
func (c *Controller) Err() error { return c.err }

// ErrorMessage returns the current error formatted for display.
func (c *Controller) ErrorMessage() string { return UserMessage(c.err) }

// Report returns the last successful report, or nil.
func (c *Controller) Report() *compliance.Report { return c.report }

// View returns the aggregated form of Report, or nil.
func (c *Controller) View() *compliance.View { return c.view }

// Attempt returns the id of the attempt in flight, or uuid.Nil.
func (c *Controller) Attempt() uuid.UUID {
	if c.attempt == nil {
		return uuid.Nil
	}
	return c.attempt.id
}

// Select admits f into the workflow. A non-PDF leaves everything but the
// error message untouched.
func (c *Controller) Select(f SelectedFile) error {
	if c.state == StateAnalyzing {
		return ErrBusy
	}
	if !f.IsPDF() {
		c.err = ErrNotPDF
		return ErrNotPDF
	}

	c.file = &f
	c.report = nil
	c.view = nil
	c.err = nil
	c.progress = 0
	c.setState(StateSelected)
	return nil
}

// SelectPath inspects path and selects it. Inspection failures are
// reported like a wrong file type.
func (c *Controller) SelectPath(path string) error {
	if c.state == StateAnalyzing {
		return ErrBusy
	}
	f, err := Inspect(path)
	if err != nil {
		c.err = err
		return err
	}
	return c.Select(f)
}

// Submit starts an attempt for the selected file. It is a no-op while
// Analyzing or Complete; from Failed it retries with the same file.
func (c *Controller) Submit() tea.Cmd {
	switch c.state {
	case StateAnalyzing, StateComplete:
		return nil
	}
	if c.file == nil {
		c.err = ErrNoFile
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &attempt{
		id:      uuid.New(),
		file:    *c.file,
		cancel:  cancel,
		started: time.Now(),
	}
	a.task = progressTask{attempt: a.id, interval: c.progCfg.Interval}

	c.setState(StateAnalyzing)
	c.attempt = a
	c.err = nil
	c.progress = 0
	c.report = nil
	c.view = nil

	c.logger.Printf("attempt %s: submitting %s (%d bytes)", a.id, a.file.Name, a.file.SizeBytes)
	return tea.Batch(a.task.next(), c.upload(ctx, a.id, a.file))
}

// Reset abandons any attempt and returns to Idle with nothing selected.
// A response still in flight is ignored when it arrives.
func (c *Controller) Reset() {
	if c.attempt != nil {
		c.logger.Printf("attempt %s: reset while analyzing", c.attempt.id)
	}
	c.setState(StateIdle)
	c.file = nil
	c.progress = 0
	c.err = nil
	c.report = nil
	c.view = nil
}

// Update applies a workflow message. Messages for an attempt that is no
// longer current are dropped without effect.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ProgressTickMsg:
		if !c.current(msg.Attempt) {
			return nil
		}
		c.progress = c.progCfg.advance(c.progress, c.step)
		return c.attempt.task.next()

	case ResponseMsg:
		if !c.current(msg.Attempt) {
			c.stale++
			c.logger.Printf("attempt %s: %v dropped (%d so far)", msg.Attempt, errStaleResponse, c.stale)
			return nil
		}
		if msg.Err != nil {
			return c.fail(msg.Err)
		}
		if msg.Report == nil {
			return c.fail(errors.New("analysis service returned no report"))
		}
		return c.complete(msg.Report)
	}
	return nil
}

func (c *Controller) current(id uuid.UUID) bool {
	return c.state == StateAnalyzing && c.attempt != nil && c.attempt.id == id
}

// setState is the only place the state changes. Leaving Analyzing
// releases the attempt: the request context is cancelled and the progress
// task stops being re-armed.
func (c *Controller) setState(s State) {
	if c.state == StateAnalyzing && s != StateAnalyzing && c.attempt != nil {
		c.attempt.cancel()
		c.attempt = nil
	}
	c.state = s
}

func (c *Controller) complete(report *compliance.Report) tea.Cmd {
	view := compliance.Aggregate(*report)
	c.report = report
	c.view = &view
	c.progress = 100
	c.err = nil

	done := c.finished(StateComplete)
	c.logger.Printf("attempt %s: complete, %d items, score %d", done.Attempt, len(view.Items), view.Score)
	c.setState(StateComplete)
	return emit(done)
}

func (c *Controller) fail(err error) tea.Cmd {
	c.report = nil
	c.view = nil
	c.progress = 0
	c.err = err

	done := c.finished(StateFailed)
	c.logger.Printf("attempt %s: failed: %v", done.Attempt, err)
	c.setState(StateFailed)
	return emit(done)
}

func (c *Controller) finished(s State) AttemptFinishedMsg {
	return AttemptFinishedMsg{
		Attempt:  c.attempt.id,
		File:     c.attempt.file,
		State:    s,
		Report:   c.report,
		View:     c.view,
		Err:      c.err,
		Started:  c.attempt.started,
		Finished: time.Now(),
	}
}

func (c *Controller) upload(ctx context.Context, id uuid.UUID, f SelectedFile) tea.Cmd {
	uploader := c.uploader
	return func() tea.Msg {
		if uploader == nil {
			return ResponseMsg{Attempt: id, Err: errors.New("no analysis service configured")}
		}
		content, err := f.Open()
		if err != nil {
			return ResponseMsg{Attempt: id, Err: &ValidationError{Msg: "Cannot read " + f.Name, Err: err}}
		}
		defer content.Close()

		report, err := uploader.Upload(ctx, f.Name, content)
		return ResponseMsg{Attempt: id, Report: report, Err: err}
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
