// Package upload implements the interactive compliance check screen: pick a
// PDF by path, submit it to the analysis service, watch the progress
// estimate, and browse the resulting report.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ieeecheck/ieeecheck/internal/history"
	"github.com/ieeecheck/ieeecheck/internal/tui/common"
	"github.com/ieeecheck/ieeecheck/internal/tui/report"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
	"github.com/ieeecheck/ieeecheck/pkg/buildinfo"
)

// Options configures the upload screen.
type Options struct {
	Workflow    workflow.Config
	ServiceURL  string        // shown in the footer
	History     history.Store // nil disables recording
	HistoryKeep int           // 0 keeps everything
	InitialPath string        // preselected file, e.g. from the command line
	Logger      *log.Logger
}

// Model is the Bubbletea model for the upload screen.
type Model struct {
	ctrl       *workflow.Controller
	input      common.TextInput
	bar        progress.Model
	spinner    spinner.Model
	viewport   viewport.Model
	history    history.Store
	keep       int
	serviceURL string
	logger     *log.Logger

	notice string // outcome of the last history write
	width  int
	height int
	ready  bool
}

// historySavedMsg reports the outcome of recording a finished attempt.
type historySavedMsg struct {
	id     string
	pruned int
	err    error
}

// New creates the upload screen. A non-empty InitialPath is selected
// immediately; a rejected path shows its error like a typed one.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Workflow.Logger == nil {
		opts.Workflow.Logger = opts.Logger
	}

	input := common.NewTextInput("PDF file", "/path/to/paper.pdf", "type or paste a path, then press Enter")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = common.TitleStyle.UnsetMarginBottom()

	m := Model{
		ctrl:       workflow.NewController(opts.Workflow),
		input:      input,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner:    sp,
		history:    opts.History,
		keep:       opts.HistoryKeep,
		serviceURL: opts.ServiceURL,
		logger:     opts.Logger,
	}
	if path := strings.TrimSpace(opts.InitialPath); path != "" {
		m.input.SetValue(path)
		m.ctrl.SelectPath(path)
	}
	return m
}

// Controller exposes the workflow controller.
func (m Model) Controller() *workflow.Controller { return m.ctrl }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentH := msg.Height - 6 // reserve for header/footer
		if contentH < 5 {
			contentH = 5
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, contentH)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentH
		}
		m.bar.Width = clamp(msg.Width-10, 20, 60)
		m.refreshReport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case workflow.ProgressTickMsg, workflow.ResponseMsg:
		return m, m.ctrl.Update(msg)

	case workflow.AttemptFinishedMsg:
		m.notice = ""
		var focus tea.Cmd
		if msg.State == workflow.StateComplete {
			m.refreshReport()
			m.viewport.GotoTop()
		} else {
			focus = m.input.Focus()
		}
		return m, tea.Batch(focus, m.record(msg))

	case historySavedMsg:
		switch {
		case msg.err != nil:
			m.logger.Printf("history: %v", msg.err)
			m.notice = common.WarningStyle.Render("History not saved: " + msg.err.Error())
		case msg.pruned > 0:
			m.notice = common.MutedStyle.Render(fmt.Sprintf("Saved to history as %s (%d older entries pruned)", shortID(msg.id), msg.pruned))
		default:
			m.notice = common.MutedStyle.Render("Saved to history as " + shortID(msg.id))
		}
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State() != workflow.StateAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Delegate to the input or the report viewport
	var cmd tea.Cmd
	if m.ctrl.State() == workflow.StateComplete {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.ctrl.State()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "ctrl+r":
		return m, m.reset()
	case "q":
		// q is typed into the path while the input has focus
		if !m.input.Focused() {
			return m, tea.Quit
		}
	case "enter":
		switch state {
		case workflow.StateAnalyzing, workflow.StateComplete:
			return m, nil
		}
		return m, m.selectOrSubmit()
	}

	if state == workflow.StateComplete {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if state == workflow.StateAnalyzing {
		return m, nil
	}
	return m, m.input.Update(msg)
}

// selectOrSubmit selects the typed path when it differs from the held
// file, otherwise submits the held file.
func (m *Model) selectOrSubmit() tea.Cmd {
	path := strings.TrimSpace(m.input.Value())
	held := m.ctrl.File()
	if path != "" && (held == nil || held.Path != path) {
		m.ctrl.SelectPath(path)
		return nil
	}

	cmd := m.ctrl.Submit()
	if cmd == nil {
		return nil
	}
	m.notice = ""
	m.input.Blur()
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) reset() tea.Cmd {
	m.ctrl.Reset()
	m.notice = ""
	m.input.Reset()
	if m.ready {
		m.viewport.SetContent("")
	}
	return m.input.Focus()
}

func (m *Model) refreshReport() {
	if !m.ready {
		return
	}
	if v := m.ctrl.View(); v != nil {
		m.viewport.SetContent(report.Render(*v, m.width))
	}
}

// record saves a finished attempt in the background.
func (m Model) record(msg workflow.AttemptFinishedMsg) tea.Cmd {
	store, keep := m.history, m.keep
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entry := history.FromAttempt(msg)
		if err := store.Record(ctx, entry); err != nil {
			return historySavedMsg{err: err}
		}
		saved := historySavedMsg{id: entry.ID}
		if keep > 0 {
			n, err := store.Prune(ctx, keep)
			saved.pruned, saved.err = n, err
		}
		return saved
	}
}

// View renders the upload screen.
func (m Model) View() string {
	var b strings.Builder

	// Header
	header := common.HeaderStyle.Render(
		"ieeecheck" +
			common.MutedStyle.Render(" "+buildinfo.Version) +
			common.MutedStyle.Render(" | IEEE Compliance Check"))
	b.WriteString(header)
	b.WriteString("\n")

	if !m.ready {
		b.WriteString("\n  Initializing...\n")
		return b.String()
	}

	b.WriteString(m.renderBody())
	b.WriteString("\n")

	// Footer
	b.WriteString(common.FooterStyle.Render(m.renderFooter()))
	return b.String()
}

func (m Model) renderBody() string {
	switch m.ctrl.State() {
	case workflow.StateComplete:
		body := m.viewport.View()
		if m.notice != "" {
			body += "\n  " + m.notice
		}
		return body
	case workflow.StateAnalyzing:
		return m.renderAnalyzing()
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if f := m.ctrl.File(); f != nil {
		b.WriteString("\n")
		b.WriteString(renderFile(*f))
		b.WriteString("\n")
	}

	if msg := m.ctrl.ErrorMessage(); msg != "" {
		b.WriteString("\n  ")
		b.WriteString(common.ErrorStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("\n  ")
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(common.HintStyle.Render(m.renderPrompt()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderPrompt() string {
	switch m.ctrl.State() {
	case workflow.StateSelected:
		return "Press Enter to analyze this document"
	case workflow.StateFailed:
		return "Press Enter to try again, or Esc to choose another file"
	default:
		return "Select a PDF document to check it against the IEEE formatting rules"
	}
}

func (m Model) renderAnalyzing() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" Processing...")
	if f := m.ctrl.File(); f != nil {
		b.WriteString(common.MutedStyle.Render(" " + f.Name))
	}
	b.WriteString("\n\n  ")
	b.WriteString(m.bar.ViewAs(m.ctrl.Progress() / 100))
	b.WriteString("\n\n  ")
	b.WriteString(common.HintStyle.Render("The analysis service is checking your document. Press Esc to cancel."))
	b.WriteString("\n")
	return b.String()
}

func renderFile(f workflow.SelectedFile) string {
	details := common.FormatSize(f.SizeBytes)
	if f.Pages > 0 {
		details += fmt.Sprintf(", %d pages", f.Pages)
	}
	return common.BoxStyle.Render(
		common.LabelStyle.Render(f.Name) + "\n" + common.MutedStyle.Render(details))
}

func (m Model) renderFooter() string {
	var keys string
	switch m.ctrl.State() {
	case workflow.StateComplete:
		keys = " [↑/↓] Scroll  [Esc] Check another PDF  [q] Quit"
	case workflow.StateAnalyzing:
		keys = " [Esc] Cancel  [ctrl+c] Quit"
	default:
		keys = " [Enter] Select/Analyze  [Esc] Clear  [ctrl+c] Quit"
	}
	if m.serviceURL == "" {
		return keys
	}
	return fmt.Sprintf("%s | %s", keys, m.serviceURL)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
