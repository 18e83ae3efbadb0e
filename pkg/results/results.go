// Package results contains the normalized, check-kind-agnostic result model
// consumed by rendering and persistence, and the normalizer that produces it
// from raw backend payloads.
package results

import (
	"sort"
	"time"
)

// NodeResult is the outcome of one check from one vantage point. Exactly one
// of the metric sub-structs is set on success; on failure only Success and
// Error are populated.
type NodeResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Ping *PingMetrics `json:"ping,omitempty"`
	HTTP *HTTPMetrics `json:"http,omitempty"`
	TCP  *TCPMetrics  `json:"tcp,omitempty"`
	UDP  *UDPMetrics  `json:"udp,omitempty"`
	DNS  *DNSMetrics  `json:"dns,omitempty"`
}

// PingMetrics are the metrics extracted from a ping check. Latencies are in
// milliseconds and are aggregated over successful attempts only; when no
// attempt succeeded they are all zero, which callers must not read as a real
// measurement without checking Success.
type PingMetrics struct {
	AvgLatency float64 `json:"avg_latency"`
	MinLatency float64 `json:"min_latency"`
	MaxLatency float64 `json:"max_latency"`
	PacketLoss float64 `json:"packet_loss"`
	IP         string  `json:"ip,omitempty"`
}

// HTTPMetrics are the metrics extracted from an HTTP check.
type HTTPMetrics struct {
	ResponseTime float64 `json:"response_time"`
	StatusCode   int     `json:"status_code"`
	StatusMsg    string  `json:"status_msg,omitempty"`
	IP           string  `json:"ip,omitempty"`
}

// TCPMetrics are the metrics extracted from a TCP connect check.
type TCPMetrics struct {
	ConnectTime float64 `json:"connect_time"`
	IP          string  `json:"ip,omitempty"`
}

// UDPMetrics are the metrics extracted from a UDP check.
type UDPMetrics struct {
	ResponseTime float64 `json:"response_time"`
	IP           string  `json:"ip,omitempty"`
}

// DNSMetrics are the metrics extracted from a DNS resolution check.
type DNSMetrics struct {
	ResolutionTime float64  `json:"resolution_time"`
	Addresses      []string `json:"addresses,omitempty"`
}

// Report maps vantage-point display labels ("Country (City)") to outcomes.
type Report map[string]NodeResult

// Locations returns the report's labels, sorted, for stable iteration.
func (r Report) Locations() []string {
	labels := make([]string, 0, len(r))
	for l := range r {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Row is one vantage point's outcome in archival form.
type Row struct {
	Location string `json:"location"`
	NodeResult
}

// ArchivalReport is the struct that is serialized as JSON to disk as the
// archival record of a check run.
type ArchivalReport struct {
	// Version is the symbolic version (if any) of the client code.
	Version string `json:"version,omitempty"`
	// RunID uniquely identifies this invocation of the client.
	RunID string `json:"run_id"`
	// Kind is the check kind (ping, http, tcp, udp, dns).
	Kind string `json:"kind"`
	// Target is the host, URL or domain that was checked.
	Target string `json:"target"`
	// RequestID is the backend's job handle for the check.
	RequestID string `json:"request_id"`
	// StartTime is the time the check was submitted.
	StartTime time.Time `json:"start_time"`
	// EndTime is the time the results were complete.
	EndTime time.Time `json:"end_time"`
	// Rows holds one entry per vantage point, sorted by location.
	Rows []Row `json:"rows"`
}

// Archive converts a report into its archival form.
func Archive(version, runID, kind, target, requestID string,
	start, end time.Time, report Report) ArchivalReport {
	ar := ArchivalReport{
		Version:   version,
		RunID:     runID,
		Kind:      kind,
		Target:    target,
		RequestID: requestID,
		StartTime: start,
		EndTime:   end,
	}
	for _, loc := range report.Locations() {
		ar.Rows = append(ar.Rows, Row{Location: loc, NodeResult: report[loc]})
	}
	return ar
}
