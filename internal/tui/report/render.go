// Package report renders an aggregated compliance report for the terminal:
// score bar, compliance banner, and the failed, passed, and warning groups.
package report

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
	"github.com/ieeecheck/ieeecheck/internal/tui/common"
)

// Banner texts.
const (
	CompliantText    = "This document is fully IEEE compliant"
	NotCompliantText = "This document is not IEEE compliant"
	EmptyText        = "No rules were evaluated"
	MismatchText     = "The service summary disagreed with the rule results; counts below are taken from the rules."
)

// Render renders the full report for a terminal of the given width.
func Render(v compliance.View, width int) string {
	var b strings.Builder

	if meta := renderMeta(v); meta != "" {
		b.WriteString(meta)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderSummaryBar(v, width))
	b.WriteString("\n")
	b.WriteString(renderBanner(v))
	b.WriteString("\n")

	if v.SummaryMismatch {
		b.WriteString(warnStyle.Render(wrap(MismatchText, width, 1)))
		b.WriteString("\n")
	}

	b.WriteString(renderGroup("Failed Rules", v.Failed, len(v.Items), width))
	b.WriteString(renderGroup("Passed Rules", v.Passed, len(v.Items), width))
	b.WriteString(renderGroup("Warnings", v.Warnings, len(v.Items), width))
	return b.String()
}

// statusIcon returns a colored icon for a compliance status.
func statusIcon(s compliance.Status) string {
	switch s {
	case compliance.StatusPass:
		return passStyle.Render("●")
	case compliance.StatusWarning:
		return warnStyle.Render("○")
	case compliance.StatusFail:
		return failStyle.Render("✖")
	default:
		return unknownStyle.Render("?")
	}
}

// statusLabel returns a colored status label.
func statusLabel(s compliance.Status) string {
	switch s {
	case compliance.StatusPass:
		return passStyle.Render("PASS")
	case compliance.StatusWarning:
		return warnStyle.Render("WARN")
	case compliance.StatusFail:
		return failStyle.Render("FAIL")
	default:
		return unknownStyle.Render("UNKN")
	}
}

func renderMeta(v compliance.View) string {
	var parts []string
	if v.FileName != "" {
		parts = append(parts, v.FileName)
	}
	if v.CreatedAt != "" {
		parts = append(parts, "analyzed "+v.CreatedAt)
	}
	if len(parts) == 0 {
		return ""
	}
	return dimStyle.Render(" " + strings.Join(parts, " | "))
}

func renderBanner(v compliance.View) string {
	switch {
	case v.Empty():
		return dimStyle.Render(" " + EmptyText)
	case v.Compliant():
		return passStyle.Render(" ✔ " + CompliantText)
	default:
		return failStyle.Render(" ✖ " + NotCompliantText)
	}
}

// renderGroup renders one status bucket. Empty buckets are omitted.
func renderGroup(title string, items []compliance.Item, total, width int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder

	name := groupNameStyle.Render(title)
	count := groupCountStyle.Render(fmt.Sprintf("%d of %d", len(items), total))
	b.WriteString(fmt.Sprintf(" %s  %s\n", name, count))

	for _, item := range items {
		b.WriteString(renderItem(item, width))
		b.WriteString("\n")
	}
	return b.String()
}

// renderItem renders a rule line followed by its wrapped message.
func renderItem(item compliance.Item, width int) string {
	icon := statusIcon(item.Status)
	label := statusLabel(item.Status)
	name := item.Rule

	// Dim passing items to reduce noise, highlight failures
	switch item.Status {
	case compliance.StatusPass:
		name = dimStyle.Render(name)
	case compliance.StatusFail:
		name = failStyle.Render(name)
	case compliance.StatusWarning:
		name = warnStyle.Render(name)
	}

	line := fmt.Sprintf("   %s %-44s %s", icon, name, label)
	if strings.TrimSpace(item.Message) == "" {
		return line
	}
	return line + "\n" + messageStyle.Render(wrap(item.Message, width, 5))
}

// wrap word-wraps s to fit width after indenting by pad columns.
func wrap(s string, width, pad int) string {
	limit := width - pad - 2
	if limit < 20 {
		limit = 20
	}
	return indent.String(wordwrap.String(s, limit), uint(pad))
}

// renderSummaryBar renders the score, headline counts, and score bar.
func renderSummaryBar(v compliance.View, width int) string {
	if v.Empty() {
		return dimStyle.Render(" No compliance data")
	}

	c := v.Summary
	parts := []string{passStyle.Render(fmt.Sprintf("%d PASS", c.Pass))}
	if c.Fail > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d FAIL", c.Fail)))
	}
	if c.Warning > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d WARN", c.Warning)))
	}
	scored := c.Pass + c.Fail
	counts := fmt.Sprintf("  %d/%d  %s", c.Pass, scored, strings.Join(parts, "   "))

	if !v.Scored {
		return summaryBoxStyle.Render(counts + "   " + dimStyle.Render("not scored"))
	}

	barWidth := 20
	if width > 80 {
		barWidth = 30
	}

	percentStr := fmt.Sprintf("%d%%", v.Score)
	var pStyle func(...string) string
	if v.Score >= 90 {
		pStyle = passStyle.Render
	} else if v.Score >= 70 {
		pStyle = warnStyle.Render
	} else {
		pStyle = failStyle.Render
	}

	return summaryBoxStyle.Render(counts + "   " + pStyle(percentStr) + " " + pStyle(common.ProgressBar(v.Score, 100, barWidth)))
}
