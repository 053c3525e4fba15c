// Package history keeps a local record of finished compliance checks so
// that earlier reports can be listed and reprinted without re-uploading.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history entry not found")

// Store defines the persistence interface for check history.
// The primary implementation uses SQLite (see sqlite.go).
type Store interface {
	Record(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
	Delete(ctx context.Context, id string) error
	// Prune keeps the newest keep entries and deletes the rest.
	Prune(ctx context.Context, keep int) (int, error)
	Close() error
}

// Entry is one finished attempt.
type Entry struct {
	ID         string
	FileName   string
	FilePath   string
	SizeBytes  int64
	Pages      int
	State      string // "complete" or "failed"
	Pass       int
	Fail       int
	Warning    int
	Score      int
	Scored     bool
	Error      string
	Report     *compliance.Report // nil for failed attempts
	StartedAt  time.Time
	FinishedAt time.Time
}

// Filter narrows List results.
type Filter struct {
	State string
	Limit int // 0 means no limit
}

// Duration returns how long the attempt took.
func (e *Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Compliant reports whether the stored report had rules and no failures.
func (e *Entry) Compliant() bool {
	return e.State == workflow.StateComplete.String() && e.Fail == 0 && e.Pass+e.Fail+e.Warning > 0
}

// FromAttempt builds an entry from a finished workflow attempt.
func FromAttempt(msg workflow.AttemptFinishedMsg) *Entry {
	e := &Entry{
		ID:         msg.Attempt.String(),
		FileName:   msg.File.Name,
		FilePath:   msg.File.Path,
		SizeBytes:  msg.File.SizeBytes,
		Pages:      msg.File.Pages,
		State:      msg.State.String(),
		Report:     msg.Report,
		StartedAt:  msg.Started,
		FinishedAt: msg.Finished,
	}
	if msg.Attempt == uuid.Nil {
		e.ID = uuid.NewString()
	}
	if msg.View != nil {
		e.Pass = len(msg.View.Passed)
		e.Fail = len(msg.View.Failed)
		e.Warning = len(msg.View.Warnings)
		e.Score = msg.View.Score
		e.Scored = msg.View.Scored
	}
	if msg.Err != nil {
		e.Error = workflow.UserMessage(msg.Err)
	}
	return e
}
