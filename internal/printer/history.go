package printer

import (
	"fmt"
	"time"

	"github.com/gosuri/uitable"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
	"github.com/ieeecheck/ieeecheck/internal/history"
)

// HistoryRow is the machine-readable form of a history entry.
type HistoryRow struct {
	ID         string    `json:"id" yaml:"id"`
	File       string    `json:"file" yaml:"file"`
	State      string    `json:"state" yaml:"state"`
	Compliant  bool      `json:"compliant" yaml:"compliant"`
	Score      int       `json:"score" yaml:"score"`
	Scored     bool      `json:"scored" yaml:"scored"`
	Pass       int       `json:"pass" yaml:"pass"`
	Fail       int       `json:"fail" yaml:"fail"`
	Warning    int       `json:"warning" yaml:"warning"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt" yaml:"started_at"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finished_at"`
}

func newHistoryRow(e history.Entry) HistoryRow {
	return HistoryRow{
		ID:         e.ID,
		File:       e.FileName,
		State:      e.State,
		Compliant:  e.Compliant(),
		Score:      e.Score,
		Scored:     e.Scored,
		Pass:       e.Pass,
		Fail:       e.Fail,
		Warning:    e.Warning,
		Error:      e.Error,
		StartedAt:  e.StartedAt,
		FinishedAt: e.FinishedAt,
	}
}

// History writes a listing of past checks.
func (p *Printer) History(entries []history.Entry) error {
	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, newHistoryRow(e))
	}

	switch p.format {
	case FormatJSON:
		return p.json(rows)
	case FormatYAML:
		return p.yaml(rows)
	}

	if len(rows) == 0 {
		_, _ = faint.Fprintln(p.out, "No checks recorded yet")
		return nil
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 40
	tbl.AddRow(titleColor.Sprint("ID"), titleColor.Sprint("FINISHED"), titleColor.Sprint("FILE"),
		titleColor.Sprint("STATE"), titleColor.Sprint("SCORE"), titleColor.Sprint("RESULT"))
	for _, r := range rows {
		tbl.AddRow(shortID(r.ID), r.FinishedAt.Local().Format("2006-01-02 15:04"), r.File,
			r.State, scoreText(r), resultText(r))
	}
	_, _ = fmt.Fprintln(p.out, tbl)
	return nil
}

// Entry writes one stored check: the full report for completed checks,
// the recorded error for failed ones.
func (p *Printer) Entry(e *history.Entry) error {
	if e.Report != nil {
		return p.Report(e.FileName, compliance.Aggregate(*e.Report))
	}

	row := newHistoryRow(*e)
	switch p.format {
	case FormatJSON:
		return p.json(row)
	case FormatYAML:
		return p.yaml(row)
	}
	_, _ = titleColor.Fprintln(p.out, e.FileName)
	_, _ = faint.Fprintf(p.out, "%s at %s\n", e.State, e.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	if e.Error != "" {
		_, _ = failColor.Fprintln(p.out, e.Error)
	}
	return nil
}

func scoreText(r HistoryRow) string {
	if !r.Scored {
		return "-"
	}
	return scoreColor(r.Score).Sprintf("%d%%", r.Score)
}

func resultText(r HistoryRow) string {
	switch {
	case r.State != "complete":
		return failColor.Sprint("error")
	case r.Pass+r.Fail+r.Warning == 0:
		return faint.Sprint("empty")
	case r.Compliant:
		return passColor.Sprint("compliant")
	}
	return failColor.Sprintf("%d failed", r.Fail)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
