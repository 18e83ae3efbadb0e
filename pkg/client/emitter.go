package client

import (
	"fmt"

	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
)

// Emitter is an interface for emitting progress events during a check.
type Emitter interface {
	// OnSubmit is called when the backend accepts a check submission.
	OnSubmit(kind spec.Kind, target string, id RequestID)
	// OnRetry is called before a submission attempt is retried.
	OnRetry(kind spec.Kind, attempt int, err error)
	// OnPoll is called after each successful result poll.
	OnPoll(id RequestID, reported, total int)
	// OnComplete is called when every vantage point has reported.
	OnComplete(id RequestID, nodes int)
	// OnError is called on errors.
	OnError(err error)
	// OnDebug is called to print debug information.
	OnDebug(msg string)
}

// HumanReadable prints human-readable progress to stdout. It can be
// configured to include debug output, too.
type HumanReadable struct {
	Debug bool
}

// OnSubmit prints the accepted check and its request id.
func (HumanReadable) OnSubmit(kind spec.Kind, target string, id RequestID) {
	fmt.Printf("Submitted %s check for %s (request %s)\n", kind, target, id)
}

// OnRetry prints the cause of the failed attempt before the retry.
func (HumanReadable) OnRetry(kind spec.Kind, attempt int, err error) {
	fmt.Printf("Submission failed (%v), retrying (attempt %d)...\n", err, attempt)
}

// OnPoll prints how many vantage points have reported so far.
func (HumanReadable) OnPoll(id RequestID, reported, total int) {
	fmt.Printf("Waiting for results: %d/%d nodes reported\n", reported, total)
}

// OnComplete prints the final node count.
func (HumanReadable) OnComplete(id RequestID, nodes int) {
	fmt.Printf("All nodes reported (%d locations)\n", nodes)
}

// OnError is called on errors.
func (HumanReadable) OnError(err error) {
	fmt.Println(err)
}

// OnDebug is called to print debug information.
func (e HumanReadable) OnDebug(msg string) {
	if e.Debug {
		fmt.Printf("DEBUG: %s\n", msg)
	}
}

// Quiet suppresses all progress output. Errors still reach the caller through
// return values.
type Quiet struct{}

func (Quiet) OnSubmit(spec.Kind, string, RequestID) {}
func (Quiet) OnRetry(spec.Kind, int, error)         {}
func (Quiet) OnPoll(RequestID, int, int)            {}
func (Quiet) OnComplete(RequestID, int)             {}
func (Quiet) OnError(error)                         {}
func (Quiet) OnDebug(string)                        {}

// Checks that the emitters implement Emitter.
var (
	_ Emitter = &HumanReadable{}
	_ Emitter = Quiet{}
)
