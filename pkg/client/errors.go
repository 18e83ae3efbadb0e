package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoRequestID is returned by a single submission attempt when the backend
// answered but the response carried no job handle.
var ErrNoRequestID = errors.New("no request id in response")

// SubmissionError is returned when the backend rejected a check or never
// returned a job handle after the whole retry budget.
type SubmissionError struct {
	// Attempts is how many submission attempts were made.
	Attempts int
	// Err is the last underlying cause.
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("check submission failed after %d attempts: %v",
		e.Attempts, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// PollTimeoutError is returned when the poll loop's cumulative time budget is
// exceeded. Incomplete distinguishes "some nodes never reported" from
// "transport failed near the deadline"; both surface as a timeout but the
// cause matters for diagnostics.
type PollTimeoutError struct {
	// RequestID is the job handle that was being polled.
	RequestID RequestID
	// Elapsed is the time spent polling before giving up.
	Elapsed time.Duration
	// Incomplete is true when the last poll succeeded but some vantage
	// points had still not reported.
	Incomplete bool
	// Err is the last transport error, when Incomplete is false.
	Err error
}

func (e *PollTimeoutError) Error() string {
	if e.Incomplete {
		return fmt.Sprintf("timed out after %v waiting for all nodes to respond (request %s)",
			e.Elapsed.Round(time.Millisecond), e.RequestID)
	}
	return fmt.Sprintf("timed out after %v waiting for results (request %s): %v",
		e.Elapsed.Round(time.Millisecond), e.RequestID, e.Err)
}

func (e *PollTimeoutError) Unwrap() error { return e.Err }
