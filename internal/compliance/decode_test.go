package compliance

import (
	"errors"
	"testing"
)

func TestParseReport_Valid(t *testing.T) {
	body := `{
		"id": 12,
		"fileName": "paper.pdf",
		"abstractPresent": true,
		"createdAt": "2025-03-01T10:00:00Z",
		"items": [
			{"rule": "Margins", "status": "pass", "message": "ok"},
			{"rule": "Font", "status": "fail", "message": "Times New Roman required"},
			{"rule": "Keywords", "status": "warning", "message": "missing index terms"}
		],
		"summary": {"passCount": 1, "failCount": 1, "warningCount": 1}
	}`

	r, err := ParseReport([]byte(body))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if len(r.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(r.Items))
	}
	if r.Items[1].Rule != "Font" || r.Items[1].Status != StatusFail {
		t.Errorf("Items[1] = %+v", r.Items[1])
	}
	if r.Summary == nil || r.Summary.WarningCount == nil || *r.Summary.WarningCount != 1 {
		t.Errorf("Summary = %+v, want warningCount 1", r.Summary)
	}
	if r.FileName != "paper.pdf" {
		t.Errorf("FileName = %q", r.FileName)
	}
	if r.CreatedAt != "2025-03-01T10:00:00Z" {
		t.Errorf("CreatedAt = %q", r.CreatedAt)
	}
}

func TestParseReport_OptionalSummary(t *testing.T) {
	r, err := ParseReport([]byte(`{"items": []}`))
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if r.Summary != nil {
		t.Errorf("Summary = %+v, want nil", r.Summary)
	}
	if r.Items == nil || len(r.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", r.Items)
	}
}

func TestParseReport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"html", "<html><body>502 Bad Gateway</body></html>"},
		{"array", `[{"rule":"a","status":"pass"}]`},
		{"truncated", `{"items": [`},
		{"missing items", `{"summary": {"passCount": 1, "failCount": 0}}`},
		{"null items", `{"items": null}`},
		{"items not array", `{"items": "none"}`},
		{"unknown status", `{"items": [{"rule": "a", "status": "skipped", "message": ""}]}`},
		{"missing status", `{"items": [{"rule": "a", "message": ""}]}`},
		{"negative count", `{"items": [], "summary": {"passCount": -1, "failCount": 0}}`},
		{"negative warning", `{"items": [], "summary": {"passCount": 0, "failCount": 0, "warningCount": -2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReport([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedReport) {
				t.Errorf("error %v does not wrap ErrMalformedReport", err)
			}
		})
	}
}
