// Package model contains the wire types exchanged with the measurement
// backend.
package model

import (
	"bytes"
	"encoding/json"
)

// SubmitResponse is the JSON body returned by a check submission endpoint.
type SubmitResponse struct {
	// OK is 1 when the backend accepted the check.
	OK int `json:"ok"`

	// RequestID is the opaque handle used to retrieve results. The client
	// treats it as a polling key and assumes nothing about its structure.
	RequestID string `json:"request_id"`

	// PermanentLink is a browser URL for the same check, when the backend
	// provides one.
	PermanentLink string `json:"permanent_link,omitempty"`
}

// RawNodeResult is the undecoded per-node value from a result payload. It is
// either JSON null (the node has not reported yet) or a kind-specific nested
// array. Interpretation is deferred to the results package so that one bad
// node never fails decoding of the whole payload.
type RawNodeResult []byte

// UnmarshalJSON stores a verbatim copy of the value.
func (r *RawNodeResult) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// MarshalJSON returns the stored value, or null if empty.
func (r RawNodeResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

var jsonNull = []byte("null")

// Reported reports whether the node has responded at all. Any non-null value
// counts as reported, including backend-side error sentinels; the protocol
// gives no way to tell those apart from completed measurements.
func (r RawNodeResult) Reported() bool {
	return len(r) > 0 && !bytes.Equal(bytes.TrimSpace(r), jsonNull)
}

// Entries decodes the outer array of the value. It returns nil and false if
// the value is absent, null, or not an array.
func (r RawNodeResult) Entries() ([]json.RawMessage, bool) {
	if !r.Reported() {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(r, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// RawReport is a result payload: one entry per requested vantage point, keyed
// by node identifier.
type RawReport map[string]RawNodeResult

// Complete reports whether every vantage point in the payload has reported.
func (rr RawReport) Complete() bool {
	for _, v := range rr {
		if !v.Reported() {
			return false
		}
	}
	return true
}
