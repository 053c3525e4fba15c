package printer

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	faint      = color.New(color.Faint)
	passColor  = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
)

func (p *Printer) reportText(doc Document) {
	_, _ = titleColor.Fprintln(p.out, doc.File)
	if doc.CreatedAt != "" {
		_, _ = faint.Fprintf(p.out, "analyzed %s\n", doc.CreatedAt)
	}
	_, _ = fmt.Fprintln(p.out)

	c := doc.Summary
	if doc.Scored {
		_, _ = scoreColor(doc.Score).Fprintf(p.out, "Score: %d%%", doc.Score)
		_, _ = faint.Fprintf(p.out, "  (%d of %d rules passed", c.Pass, c.Pass+c.Fail)
		if c.Warning > 0 {
			_, _ = faint.Fprintf(p.out, ", %d warnings", c.Warning)
		}
		_, _ = faint.Fprintln(p.out, ")")
	}

	switch {
	case doc.Empty:
		_, _ = faint.Fprintln(p.out, "No rules were evaluated")
	case doc.Compliant:
		_, _ = passColor.Fprintln(p.out, "✔ This document is fully IEEE compliant")
	default:
		_, _ = failColor.Fprintln(p.out, "✖ This document is not IEEE compliant")
	}
	if doc.SummaryMismatch {
		_, _ = warnColor.Fprintln(p.out, "The service summary disagreed with the rule results; counts are taken from the rules.")
	}

	p.group("Failed Rules", doc.Failed)
	p.group("Passed Rules", doc.Passed)
	p.group("Warnings", doc.Warnings)
}

func (p *Printer) group(title string, items []compliance.Item) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(p.out)
	_, _ = titleColor.Fprint(p.out, title)
	_, _ = faint.Fprintf(p.out, " - %d\n", len(items))

	tbl := uitable.New()
	tbl.MaxColWidth = 72
	tbl.Wrap = true
	for _, item := range items {
		tbl.AddRow(" "+statusLabel(item.Status), item.Rule, item.Message)
	}
	_, _ = fmt.Fprintln(p.out, tbl)
}

func statusLabel(s compliance.Status) string {
	switch s {
	case compliance.StatusPass:
		return passColor.Sprint("PASS")
	case compliance.StatusFail:
		return failColor.Sprint("FAIL")
	case compliance.StatusWarning:
		return warnColor.Sprint("WARN")
	}
	return faint.Sprint("UNKN")
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 90:
		return passColor
	case score >= 70:
		return warnColor
	}
	return failColor
}
