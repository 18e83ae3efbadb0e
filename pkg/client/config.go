package client

import (
	"time"

	"github.com/hostprobe/hostprobe/internal/nodes"
)

// Config is the configuration for a Client. Zero values are replaced with the
// protocol defaults from pkg/checkhost/spec by New.
type Config struct {
	// BaseURL is the base URL of the measurement backend.
	BaseURL string

	// Catalog is the vantage-point catalog used to expand an empty node set
	// into "all known nodes" and to label normalized results.
	Catalog nodes.Catalog

	// Timeout is the per-call timeout applied to every backend request.
	Timeout time.Duration

	// SubmitAttempts is the submission retry budget.
	SubmitAttempts int

	// SubmitBackoff is the fixed delay between submission attempts.
	SubmitBackoff time.Duration

	// PollInterval is the fixed delay before each result poll.
	PollInterval time.Duration

	// PollCeiling is the cumulative time budget for the poll loop.
	PollCeiling time.Duration

	// Emitter is the interface used to emit progress events. It can be
	// overridden to provide custom output.
	Emitter Emitter
}
