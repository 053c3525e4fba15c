package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

// ProgressTickMsg is one beat of an attempt's cosmetic progress timer.
type ProgressTickMsg struct {
	Attempt uuid.UUID
}

// ResponseMsg carries the outcome of an attempt's upload.
type ResponseMsg struct {
	Attempt uuid.UUID
	Report  *compliance.Report
	Err     error
}

// AttemptFinishedMsg is emitted once when an attempt reaches Complete or
// Failed. It is not emitted for attempts abandoned by Reset.
type AttemptFinishedMsg struct {
	Attempt  uuid.UUID
	File     SelectedFile
	State    State
	Report   *compliance.Report
	View     *compliance.View
	Err      error
	Started  time.Time
	Finished time.Time
}
