package workflow

import (
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// ProgressConfig tunes the cosmetic progress estimate shown while the
// service works. The service reports no real progress.
type ProgressConfig struct {
	Interval time.Duration
	MinStep  float64
	MaxStep  float64
	Ceiling  float64 // must stay below 100
}

// DefaultProgressConfig returns the stock progress tuning.
func DefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		Interval: 500 * time.Millisecond,
		MinStep:  1,
		MaxStep:  8,
		Ceiling:  90,
	}
}

func (p ProgressConfig) normalized() ProgressConfig {
	def := DefaultProgressConfig()
	if p.Interval <= 0 {
		p.Interval = def.Interval
	}
	if p.MaxStep <= 0 {
		// No step range means the default one; a stuck bar is never wanted.
		p.MinStep, p.MaxStep = def.MinStep, def.MaxStep
	}
	if p.MinStep < 0 {
		p.MinStep = 0
	}
	if p.MaxStep < p.MinStep {
		p.MaxStep = p.MinStep
	}
	if p.Ceiling <= 0 || p.Ceiling >= 100 {
		p.Ceiling = def.Ceiling
	}
	return p
}

// StepFunc returns the next increment within [min, max].
type StepFunc func(min, max float64) float64

func randomStep(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}

// advance applies one tick to current. The result never decreases and
// never exceeds the ceiling.
func (p ProgressConfig) advance(current float64, step StepFunc) float64 {
	inc := step(p.MinStep, p.MaxStep)
	if inc < 0 {
		inc = 0
	}
	next := current + inc
	if next > p.Ceiling {
		next = p.Ceiling
	}
	if next < current {
		return current
	}
	return next
}

// progressTask is the repeating timer of one attempt. Every tick is tagged
// with the attempt id; the task is cancelled by releasing its attempt, after
// which its ticks are dropped and it is never re-armed.
type progressTask struct {
	attempt  uuid.UUID
	interval time.Duration
}

func (t progressTask) next() tea.Cmd {
	id := t.attempt
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return ProgressTickMsg{Attempt: id}
	})
}
