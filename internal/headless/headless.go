// Package headless runs a single compliance check without a UI, for scripts
// and CI. It drives the same workflow Controller as the interactive screen
// inside a Bubble Tea program that has no renderer and reads no input.
package headless

import (
	"context"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
)

// Process exit codes for a check.
const (
	ExitCompliant    = 0
	ExitNotCompliant = 1
	ExitError        = 2
	ExitEmpty        = 3
)

// Options configures a headless check.
type Options struct {
	Workflow workflow.Config
	Progress Reporter // nil disables progress
	Logger   *log.Logger
}

// Result is the outcome of one check.
type Result struct {
	File    workflow.SelectedFile
	State   workflow.State
	View    *compliance.View
	Err     error
	Attempt *workflow.AttemptFinishedMsg // nil when no attempt was made
}

// ExitCode maps the result to a process exit code.
func (r Result) ExitCode() int {
	switch {
	case r.Err != nil, r.State != workflow.StateComplete, r.View == nil:
		return ExitError
	case r.View.Empty():
		return ExitEmpty
	case r.View.Compliant():
		return ExitCompliant
	}
	return ExitNotCompliant
}

// Message returns the user-facing error message, or "".
func (r Result) Message() string { return workflow.UserMessage(r.Err) }

// Run selects path, submits it, and waits for the attempt to finish or ctx
// to end. The returned error is only set when the program itself could not
// run; check failures are reported through Result.
func Run(ctx context.Context, path string, opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Workflow.Logger == nil {
		opts.Workflow.Logger = opts.Logger
	}
	if opts.Progress == nil {
		opts.Progress = NoOpReporter{}
	}

	ctrl := workflow.NewController(opts.Workflow)
	if err := ctrl.SelectPath(path); err != nil {
		return Result{State: ctrl.State(), Err: err}, nil
	}
	file := *ctrl.File()

	m := &model{ctrl: ctrl, progress: opts.Progress}
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)

	opts.Progress.Start(file.Name)
	_, err := p.Run()
	if m.done == nil {
		// Cancelled before the attempt finished.
		opts.Progress.Finish(false)
		switch {
		case ctx.Err() != nil:
			err = ctx.Err()
		case err == nil:
			err = ctrl.Err()
		}
		ctrl.Reset()
		opts.Logger.Printf("check %s aborted: %v", file.Name, err)
		return Result{File: file, State: workflow.StateFailed, Err: err}, nil
	}

	done := m.done
	return Result{
		File:    file,
		State:   done.State,
		View:    done.View,
		Err:     done.Err,
		Attempt: done,
	}, nil
}

// model adapts the Controller to a Bubble Tea program that quits once the
// attempt finishes.
type model struct {
	ctrl     *workflow.Controller
	progress Reporter
	done     *workflow.AttemptFinishedMsg
}

func (m *model) Init() tea.Cmd {
	cmd := m.ctrl.Submit()
	if cmd == nil {
		return tea.Quit
	}
	return cmd
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workflow.ProgressTickMsg:
		cmd := m.ctrl.Update(msg)
		if m.ctrl.State() == workflow.StateAnalyzing {
			m.progress.Set(m.ctrl.Progress())
		}
		return m, cmd

	case workflow.ResponseMsg:
		return m, m.ctrl.Update(msg)

	case workflow.AttemptFinishedMsg:
		m.done = &msg
		m.progress.Finish(msg.State == workflow.StateComplete)
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) View() string { return "" }
