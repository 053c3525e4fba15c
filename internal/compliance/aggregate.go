package compliance

import "math"

// View is the normalized, display-ready form of a Report.
type View struct {
	Items []Item

	// Stable partitions of Items by status.
	Passed   []Item
	Failed   []Item
	Warnings []Item

	// Summary holds the headline counts. It always equals counting Items by
	// status; SummarySource records whether the service's own summary was
	// consistent enough to be shown verbatim.
	Summary         Counts
	SummarySource   SummarySource
	SummaryMismatch bool

	// Score is round(100*pass/(pass+fail)); warnings are not in the
	// denominator. Scored is false when there is nothing to score.
	Score  int
	Scored bool

	FileName  string
	CreatedAt string
}

// Aggregate builds the View for a report. Buckets and score are always
// recomputed from the items; the service summary only feeds the headline
// counts, and only when it agrees with the items.
func Aggregate(r Report) View {
	v := View{
		Items:     r.Items,
		FileName:  r.FileName,
		CreatedAt: r.CreatedAt,
	}

	var derived Counts
	for _, item := range r.Items {
		switch item.Status {
		case StatusPass:
			derived.Pass++
			v.Passed = append(v.Passed, item)
		case StatusFail:
			derived.Fail++
			v.Failed = append(v.Failed, item)
		case StatusWarning:
			derived.Warning++
			v.Warnings = append(v.Warnings, item)
		}
	}

	v.Summary = derived
	v.SummarySource = SourceDerived
	if r.Summary != nil {
		if summaryMatches(*r.Summary, derived) {
			v.SummarySource = SourceService
		} else {
			v.SummaryMismatch = true
		}
	}

	v.Score, v.Scored = Score(derived.Pass, derived.Fail)
	return v
}

func summaryMatches(s Summary, derived Counts) bool {
	if s.PassCount != derived.Pass || s.FailCount != derived.Fail {
		return false
	}
	if s.WarningCount != nil && *s.WarningCount != derived.Warning {
		return false
	}
	return true
}

// Score returns the compliance percentage for the given counts and whether
// any rule was scored at all.
func Score(pass, fail int) (int, bool) {
	total := pass + fail
	if total <= 0 {
		return 0, false
	}
	return int(math.Round(float64(pass*100) / float64(total))), true
}

// Empty reports whether the service evaluated no rules.
func (v View) Empty() bool {
	return len(v.Items) == 0
}

// Compliant reports whether the document passed every rule. An empty
// report is never compliant.
func (v View) Compliant() bool {
	return len(v.Items) > 0 && len(v.Failed) == 0
}

// Ordered returns the items in display order: failures, passes, warnings.
func (v View) Ordered() []Item {
	out := make([]Item, 0, len(v.Items))
	out = append(out, v.Failed...)
	out = append(out, v.Passed...)
	out = append(out, v.Warnings...)
	return out
}

// OverallStatus returns the worst-case status across all items, or "" for
// an empty report.
func (v View) OverallStatus() Status {
	switch {
	case v.Empty():
		return ""
	case len(v.Failed) > 0:
		return StatusFail
	case len(v.Warnings) > 0:
		return StatusWarning
	}
	return StatusPass
}
