// Package printer writes compliance results and history listings for the
// non-interactive commands, as colored text tables, JSON, or YAML.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ieeecheck/ieeecheck/internal/compliance"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected text, json, or yaml)", s)
}

// Printer writes results in one format.
type Printer struct {
	out    io.Writer
	format Format
}

// New creates a printer writing to out.
func New(out io.Writer, format Format) *Printer {
	if format == "" {
		format = FormatText
	}
	return &Printer{out: out, format: format}
}

// Document is the machine-readable form of a finished check.
type Document struct {
	File            string            `json:"file" yaml:"file"`
	Compliant       bool              `json:"compliant" yaml:"compliant"`
	Empty           bool              `json:"empty" yaml:"empty"`
	Status          string            `json:"status" yaml:"status"`
	Score           int               `json:"score" yaml:"score"`
	Scored          bool              `json:"scored" yaml:"scored"`
	Summary         compliance.Counts `json:"summary" yaml:"summary"`
	SummarySource   string            `json:"summarySource" yaml:"summary_source"`
	SummaryMismatch bool              `json:"summaryMismatch,omitempty" yaml:"summary_mismatch,omitempty"`
	CreatedAt       string            `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	Failed          []compliance.Item `json:"failed" yaml:"failed"`
	Passed          []compliance.Item `json:"passed" yaml:"passed"`
	Warnings        []compliance.Item `json:"warnings" yaml:"warnings"`
}

// NewDocument builds the Document for a view. file names the uploaded
// document; the service's own file name is used when file is empty.
func NewDocument(file string, v compliance.View) Document {
	if file == "" {
		file = v.FileName
	}
	return Document{
		File:            file,
		Compliant:       v.Compliant(),
		Empty:           v.Empty(),
		Status:          string(v.OverallStatus()),
		Score:           v.Score,
		Scored:          v.Scored,
		Summary:         v.Summary,
		SummarySource:   string(v.SummarySource),
		SummaryMismatch: v.SummaryMismatch,
		CreatedAt:       v.CreatedAt,
		Failed:          nonNil(v.Failed),
		Passed:          nonNil(v.Passed),
		Warnings:        nonNil(v.Warnings),
	}
}

func nonNil(items []compliance.Item) []compliance.Item {
	if items == nil {
		return []compliance.Item{}
	}
	return items
}

// Report writes the result of one check.
func (p *Printer) Report(file string, v compliance.View) error {
	doc := NewDocument(file, v)
	switch p.format {
	case FormatJSON:
		return p.json(doc)
	case FormatYAML:
		return p.yaml(doc)
	default:
		p.reportText(doc)
		return nil
	}
}

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) yaml(v interface{}) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
