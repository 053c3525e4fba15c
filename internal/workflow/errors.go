package workflow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ieeecheck/ieeecheck/pkg/analysis"
)

// ValidationError is a local, recoverable input error. Its message is
// written for direct display.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	ErrNotPDF = &ValidationError{Msg: "Please upload a PDF file"}
	ErrNoFile = &ValidationError{Msg: "Please select a file first"}
	ErrBusy   = &ValidationError{Msg: "An analysis is already in progress"}
)

// errStaleResponse marks a response for an attempt that was reset or
// superseded. It is logged, never shown.
var errStaleResponse = errors.New("stale response")

// UserMessage turns any workflow error into the single line shown to the
// user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}

	var te *analysis.TransportError
	if errors.As(err, &te) {
		if te.StatusCode != 0 {
			return fmt.Sprintf("Analysis failed: the service returned HTTP %d (%s). Check that the analysis service is available and try again.",
				te.StatusCode, http.StatusText(te.StatusCode))
		}
		return fmt.Sprintf("Could not reach the analysis service: %v. Check that the service is available and try again.", te.Err)
	}

	var fe *analysis.FormatError
	if errors.As(err, &fe) {
		return fmt.Sprintf("The analysis service sent a response that is not a compliance report (%v). The service may be running an incompatible version.", fe.Err)
	}

	return err.Error()
}
