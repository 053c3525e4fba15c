package compliance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedReport is wrapped by every ParseReport schema failure.
var ErrMalformedReport = errors.New("malformed compliance report")

// ParseReport decodes a service response body. The body must be a JSON
// object with an items array whose statuses are all known; unknown extra
// fields are ignored.
func ParseReport(data []byte) (*Report, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedReport)
	}

	var raw struct {
		Items   *[]Item  `json:"items"`
		Summary *Summary `json:"summary"`

		FileName  string `json:"fileName"`
		CreatedAt string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if raw.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrMalformedReport)
	}

	for i, item := range *raw.Items {
		if !item.Status.Valid() {
			return nil, fmt.Errorf("%w: item %d (%q) has unknown status %q",
				ErrMalformedReport, i, item.Rule, item.Status)
		}
	}

	if s := raw.Summary; s != nil {
		if s.PassCount < 0 || s.FailCount < 0 || (s.WarningCount != nil && *s.WarningCount < 0) {
			return nil, fmt.Errorf("%w: negative summary count", ErrMalformedReport)
		}
	}

	return &Report{
		Items:     *raw.Items,
		Summary:   raw.Summary,
		FileName:  raw.FileName,
		CreatedAt: raw.CreatedAt,
	}, nil
}
