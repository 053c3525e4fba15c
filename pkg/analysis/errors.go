package analysis

import (
	"fmt"
	"net/http"
)

// TransportError means the upload did not complete: the request failed on
// the network or the service answered with a non-200 status.
type TransportError struct {
	StatusCode int    // 0 when no response was received
	Body       string // leading bytes of the error response, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("analysis service returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
		if e.Body != "" {
			msg += ": " + e.Body
		}
		return msg
	}
	return fmt.Sprintf("analysis request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError means the service answered 200 but the body is not a
// compliance report. This usually points at a contract mismatch rather than
// an outage.
type FormatError struct {
	ContentType string
	Err         error
}

func (e *FormatError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("unexpected response from analysis service (content type %q): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("unexpected response from analysis service: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
