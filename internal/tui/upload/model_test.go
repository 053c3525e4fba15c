package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
	"github.com/ieeecheck/ieeecheck/internal/history"
	"github.com/ieeecheck/ieeecheck/internal/tui/report"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
	"github.com/ieeecheck/ieeecheck/pkg/analysis"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, name string, r io.Reader) (*compliance.Report, error) {
	return nil, errors.New("not used")
}

// memStore is an in-memory history.Store.
type memStore struct {
	mu      sync.Mutex
	entries []history.Entry
	pruned  []int
	err     error
}

func (s *memStore) Record(ctx context.Context, e *history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*history.Entry, error) {
	return nil, history.ErrNotFound
}

func (s *memStore) List(ctx context.Context, f history.Filter) ([]history.Entry, error) {
	return s.entries, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error { return nil }

func (s *memStore) Prune(ctx context.Context, keep int) (int, error) {
	s.pruned = append(s.pruned, keep)
	return 0, nil
}

func (s *memStore) Close() error { return nil }

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte(samplePDF), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Workflow.Uploader == nil {
		opts.Workflow.Uploader = stubUploader{}
	}
	m := New(opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// find runs cmd (expanding batches) and returns the first message of type T.
func find[T tea.Msg](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if got, ok := find[T](c); ok {
				return got, true
			}
		}
	}
	return zero, false
}

func sampleReport() *compliance.Report {
	return &compliance.Report{Items: []compliance.Item{
		{Rule: "Margins", Status: compliance.StatusPass, Message: "ok"},
		{Rule: "Font", Status: compliance.StatusFail, Message: "Times New Roman required"},
		{Rule: "Columns", Status: compliance.StatusPass, Message: "ok"},
	}}
}

// analyzing returns a model that has submitted a selected file.
func analyzing(t *testing.T, opts Options) Model {
	t.Helper()
	opts.InitialPath = writePDF(t)
	m := newModel(t, opts)
	m, cmd := send(t, m, key("enter"))
	if cmd == nil {
		t.Fatal("enter on a selected file should submit")
	}
	if m.ctrl.State() != workflow.StateAnalyzing {
		t.Fatalf("state = %s, want analyzing", m.ctrl.State())
	}
	return m
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNew_Idle(t *testing.T) {
	m := New(Options{})
	if m.ctrl.State() != workflow.StateIdle {
		t.Errorf("state = %s", m.ctrl.State())
	}
	if !m.input.Focused() {
		t.Error("path input should start focused")
	}
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("view before sizing should show Initializing")
	}
}

func TestNew_InitialPath(t *testing.T) {
	m := New(Options{InitialPath: writePDF(t)})
	if m.ctrl.State() != workflow.StateSelected {
		t.Errorf("state = %s, want selected", m.ctrl.State())
	}
}

func TestNew_InitialPathRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	m := newModel(t, Options{InitialPath: path})
	if m.ctrl.State() != workflow.StateIdle {
		t.Errorf("state = %s, want idle", m.ctrl.State())
	}
	if !strings.Contains(m.View(), "Please upload a PDF file") {
		t.Error("rejected file should show the validation message")
	}
}

// ---------------------------------------------------------------------------
// Selection and submission
// ---------------------------------------------------------------------------

func TestEnter_SelectsTypedPath(t *testing.T) {
	m := newModel(t, Options{})
	m.input.SetValue(writePDF(t))

	m, cmd := send(t, m, key("enter"))
	if cmd != nil {
		t.Error("selecting should not start work")
	}
	if m.ctrl.State() != workflow.StateSelected {
		t.Fatalf("state = %s, want selected", m.ctrl.State())
	}
	view := m.View()
	if !strings.Contains(view, "paper.pdf") || !strings.Contains(view, "Press Enter to analyze") {
		t.Errorf("selected view missing file card or prompt: %q", view)
	}
}

func TestEnter_NonPDFRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("hello"), 0o644)

	m := newModel(t, Options{})
	m.input.SetValue(path)
	m, _ = send(t, m, key("enter"))
	if m.ctrl.State() != workflow.StateIdle {
		t.Errorf("state = %s, want idle", m.ctrl.State())
	}
	if !strings.Contains(m.View(), "Please upload a PDF file") {
		t.Error("missing validation message")
	}
}

func TestEnter_EmptyInputWithoutFile(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := send(t, m, key("enter"))
	if cmd != nil {
		t.Error("nothing to submit")
	}
	if !strings.Contains(m.View(), "Please select a file first") {
		t.Error("missing no-file message")
	}
}

func TestEnter_SubmitShowsProgress(t *testing.T) {
	m := analyzing(t, Options{})
	id := m.ctrl.Attempt()

	m, _ = send(t, m, workflow.ProgressTickMsg{Attempt: id})
	if m.ctrl.Progress() <= 0 {
		t.Errorf("progress = %v, want > 0", m.ctrl.Progress())
	}
	view := m.View()
	if !strings.Contains(view, "Processing...") {
		t.Errorf("analyzing view should say Processing...: %q", view)
	}
	if m.input.Focused() {
		t.Error("input should be blurred while analyzing")
	}
}

func TestEnter_IgnoredWhileAnalyzing(t *testing.T) {
	m := analyzing(t, Options{})
	id := m.ctrl.Attempt()
	m, cmd := send(t, m, key("enter"))
	if cmd != nil || m.ctrl.Attempt() != id {
		t.Error("enter while analyzing must not start another attempt")
	}
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func TestResponse_RendersReportAndRecordsHistory(t *testing.T) {
	store := &memStore{}
	m := analyzing(t, Options{History: store, HistoryKeep: 50})
	id := m.ctrl.Attempt()

	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: id, Report: sampleReport()})
	done, ok := find[workflow.AttemptFinishedMsg](cmd)
	if !ok {
		t.Fatal("response should produce AttemptFinishedMsg")
	}

	m, cmd = send(t, m, done)
	if m.ctrl.State() != workflow.StateComplete {
		t.Fatalf("state = %s", m.ctrl.State())
	}
	view := m.View()
	if !strings.Contains(view, report.NotCompliantText) {
		t.Errorf("report view missing banner: %q", view)
	}
	if !strings.Contains(view, "67%") {
		t.Errorf("report view missing score: %q", view)
	}

	saved, ok := find[historySavedMsg](cmd)
	if !ok {
		t.Fatal("finished attempt should be recorded")
	}
	if saved.err != nil {
		t.Fatalf("record: %v", saved.err)
	}
	if len(store.entries) != 1 || store.entries[0].ID != id.String() {
		t.Errorf("entries = %+v", store.entries)
	}
	if len(store.pruned) != 1 || store.pruned[0] != 50 {
		t.Errorf("pruned = %v, want [50]", store.pruned)
	}

	m, _ = send(t, m, saved)
	if !strings.Contains(m.View(), "Saved to history") {
		t.Error("history notice missing")
	}
}

func TestResponse_HistoryFailureIsShown(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	m := analyzing(t, Options{History: store})
	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: m.ctrl.Attempt(), Report: sampleReport()})
	done, _ := find[workflow.AttemptFinishedMsg](cmd)
	m, cmd = send(t, m, done)
	saved, _ := find[historySavedMsg](cmd)
	m, _ = send(t, m, saved)
	if !strings.Contains(m.View(), "disk full") {
		t.Error("history error should be visible")
	}
}

func TestResponse_Failure(t *testing.T) {
	m := analyzing(t, Options{})
	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: m.ctrl.Attempt(), Err: &analysis.TransportError{StatusCode: 500}})
	done, _ := find[workflow.AttemptFinishedMsg](cmd)
	m, _ = send(t, m, done)

	if m.ctrl.State() != workflow.StateFailed {
		t.Fatalf("state = %s", m.ctrl.State())
	}
	view := m.View()
	if !strings.Contains(view, "HTTP 500") {
		t.Errorf("failure view should show the status: %q", view)
	}
	if !strings.Contains(view, "try again") {
		t.Error("failure view should offer a retry")
	}
	if !m.input.Focused() {
		t.Error("input should regain focus after a failure")
	}

	m, cmd = send(t, m, key("enter"))
	if cmd == nil || m.ctrl.State() != workflow.StateAnalyzing {
		t.Error("enter after a failure should retry")
	}
}

// ---------------------------------------------------------------------------
// Reset and quit
// ---------------------------------------------------------------------------

func TestEsc_CancelsAnalysis(t *testing.T) {
	m := analyzing(t, Options{})
	id := m.ctrl.Attempt()

	m, _ = send(t, m, key("esc"))
	if m.ctrl.State() != workflow.StateIdle {
		t.Fatalf("state = %s, want idle", m.ctrl.State())
	}
	if m.input.Value() != "" || !m.input.Focused() {
		t.Error("reset should clear and focus the input")
	}

	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: id, Report: sampleReport()})
	if cmd != nil || m.ctrl.State() != workflow.StateIdle {
		t.Error("late response must be ignored after reset")
	}
}

func TestEsc_FromReportChecksAnother(t *testing.T) {
	m := analyzing(t, Options{})
	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: m.ctrl.Attempt(), Report: sampleReport()})
	done, _ := find[workflow.AttemptFinishedMsg](cmd)
	m, _ = send(t, m, done)

	m, _ = send(t, m, key("esc"))
	if m.ctrl.State() != workflow.StateIdle || m.ctrl.Report() != nil {
		t.Error("esc should return to a clean idle state")
	}
	if strings.Contains(m.View(), report.NotCompliantText) {
		t.Error("report should no longer be shown")
	}
}

func TestQ_TypedIntoFocusedInput(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := send(t, m, key("q"))
	if _, quit := find[tea.QuitMsg](cmd); quit {
		t.Error("q should be typed, not quit, while the input is focused")
	}
	if m.input.Value() != "q" {
		t.Errorf("input = %q, want q", m.input.Value())
	}
}

func TestQ_QuitsFromReport(t *testing.T) {
	m := analyzing(t, Options{})
	m, cmd := send(t, m, workflow.ResponseMsg{Attempt: m.ctrl.Attempt(), Report: sampleReport()})
	done, _ := find[workflow.AttemptFinishedMsg](cmd)
	m, _ = send(t, m, done)

	_, cmd = send(t, m, key("q"))
	if _, quit := find[tea.QuitMsg](cmd); !quit {
		t.Error("q should quit from the report")
	}
}

func TestCtrlC_Quits(t *testing.T) {
	m := newModel(t, Options{})
	_, cmd := send(t, m, key("ctrl+c"))
	if _, quit := find[tea.QuitMsg](cmd); !quit {
		t.Error("ctrl+c should quit")
	}
}

func TestFooter_ShowsServiceURL(t *testing.T) {
	m := newModel(t, Options{ServiceURL: "http://localhost:5000"})
	if !strings.Contains(m.renderFooter(), "http://localhost:5000") {
		t.Error("footer should show the service URL")
	}
}
