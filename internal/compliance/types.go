// Package compliance provides the report types returned by the IEEE
// analysis service and the aggregation that turns a raw report into the
// view the client displays.
package compliance

// Status represents the outcome of a single formatting rule.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusWarning Status = "warning"
)

// Valid reports whether s is one of the statuses the service may send.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning:
		return true
	}
	return false
}

// Item is a single rule result. Items are immutable once received.
type Item struct {
	Rule    string `json:"rule" yaml:"rule"`
	Status  Status `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Summary holds the counts the service may attach to a report.
// WarningCount is optional on the wire.
type Summary struct {
	PassCount    int  `json:"passCount"`
	FailCount    int  `json:"failCount"`
	WarningCount *int `json:"warningCount,omitempty"`
}

// Report is the payload of a successful analysis response.
type Report struct {
	Items   []Item   `json:"items"`
	Summary *Summary `json:"summary,omitempty"`

	// Document metadata the service includes alongside the results.
	FileName  string `json:"fileName,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Counts holds per-status tallies.
type Counts struct {
	Pass    int `json:"pass" yaml:"pass"`
	Fail    int `json:"fail" yaml:"fail"`
	Warning int `json:"warning" yaml:"warning"`
}

// Total returns the number of counted items.
func (c Counts) Total() int {
	return c.Pass + c.Fail + c.Warning
}

// SummarySource tells where a view's headline counts came from.
type SummarySource string

const (
	SourceService SummarySource = "service"
	SourceDerived SummarySource = "derived"
)
