// Package spec contains constants for the check-host job/poll protocol.
package spec

import "time"

const (
	// DefaultBaseURL is the default base URL of the measurement backend.
	DefaultBaseURL = "https://check-host.net"

	// ResultPath is the path prefix of the result-retrieval endpoint. The
	// request id is appended to it.
	ResultPath = "/check-result/"

	// NodesPath is the endpoint listing the currently active vantage points.
	NodesPath = "/nodes/hosts"

	// RequestTimeout is the timeout applied to every single HTTP call made
	// to the backend. It is independent of the cumulative poll ceiling.
	RequestTimeout = 30 * time.Second

	// SubmitAttempts is the number of times a check submission is attempted
	// before giving up.
	SubmitAttempts = 3

	// SubmitBackoff is the fixed delay between submission attempts.
	SubmitBackoff = 2 * time.Second

	// PollInterval is the fixed delay before each result poll. The backend
	// fans a check out to its fleet and nodes report in over seconds, so
	// polling faster than this only adds backend load.
	PollInterval = 10 * time.Second

	// PollCeiling is the cumulative time budget for the poll loop. With
	// PollInterval comparable to the ceiling this allows roughly three poll
	// attempts per check.
	PollCeiling = 30 * time.Second
)

// Kind indicates the check kind.
type Kind string

const (
	// KindPing is a ping check.
	KindPing = Kind("ping")

	// KindHTTP is an HTTP check.
	KindHTTP = Kind("http")

	// KindTCP is a TCP connect check.
	KindTCP = Kind("tcp")

	// KindUDP is a UDP check.
	KindUDP = Kind("udp")

	// KindDNS is a DNS resolution check.
	KindDNS = Kind("dns")
)

// Kinds lists every supported check kind in display order.
var Kinds = []Kind{KindPing, KindHTTP, KindTCP, KindUDP, KindDNS}

// Valid reports whether k is a supported check kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPing, KindHTTP, KindTCP, KindUDP, KindDNS:
		return true
	}
	return false
}

// Path returns the submission endpoint path for the kind, e.g. "/check-ping".
func (k Kind) Path() string {
	return "/check-" + string(k)
}

// Label returns the kind name used in user-facing error strings, e.g. "Ping".
func (k Kind) Label() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindHTTP:
		return "HTTP"
	case KindTCP:
		return "TCP"
	case KindUDP:
		return "UDP"
	case KindDNS:
		return "DNS"
	}
	return string(k)
}
