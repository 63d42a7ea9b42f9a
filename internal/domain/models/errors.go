package models

import (
	"errors"
	"fmt"
)

// ErrUnsupportedInterval is returned by venue clients that cannot serve a bar interval.
// It is never retried.
var ErrUnsupportedInterval = errors.New("interval not supported by venue")

// TransportError is a network or timeout failure after the retry budget was spent.
type TransportError struct {
	Venue   string
	Retries int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failed after %d retries: %v", e.Venue, e.Retries, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports data that arrived but failed quality checks.
type ValidationError struct {
	Venue  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Venue, e.Reason)
}

// NormalizationWarning is recorded when a symbol could not be mapped for a venue and was
// passed through unchanged.
type NormalizationWarning struct {
	Symbol string
	Venue  string
}

func (w *NormalizationWarning) Error() string {
	return fmt.Sprintf("symbol %q not recognised for %s, passed through unchanged", w.Symbol, w.Venue)
}

// QuorumError aborts a run when too few venues succeeded.
type QuorumError struct {
	Got         int
	Need        int
	Diagnostics RunDiagnostics
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("Insufficient exchanges responding (got %d, need %d)", e.Got, e.Need)
}

// IsQuorumError unwraps err into a *QuorumError.
func IsQuorumError(err error) (*QuorumError, bool) {
	var qe *QuorumError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
