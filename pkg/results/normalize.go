package results

import (
	"encoding/json"

	"github.com/hostprobe/hostprobe/internal/nodes"
	"github.com/hostprobe/hostprobe/pkg/checkhost/model"
	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
)

// Normalize maps a raw result payload into a Report. Vantage points missing
// from the catalog are dropped. Shape problems in a single node's payload are
// absorbed into that node's Error field and never fail the whole report, so
// one misbehaving node cannot mask results from the rest of the fleet.
func Normalize(kind spec.Kind, raw model.RawReport, catalog nodes.Catalog) Report {
	report := make(Report, len(raw))
	for id, value := range raw {
		loc, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		report[loc.Label()] = normalizeNode(kind, value)
	}
	return report
}

func noData(kind spec.Kind) NodeResult {
	return NodeResult{Error: "No " + kind.Label() + " data"}
}

func invalid(kind spec.Kind) NodeResult {
	return NodeResult{Error: "Invalid " + kind.Label() + " response"}
}

func normalizeNode(kind spec.Kind, value model.RawNodeResult) NodeResult {
	entries, ok := value.Entries()
	if !ok || len(entries) == 0 {
		return noData(kind)
	}
	// The first entry holds the per-attempt or per-field values; the kinds
	// only differ in how they interpret it.
	switch kind {
	case spec.KindPing:
		return normalizePing(entries[0])
	case spec.KindHTTP:
		return normalizeHTTP(entries[0])
	case spec.KindTCP:
		return normalizeTCP(entries[0])
	case spec.KindUDP:
		return normalizeUDP(entries[0])
	case spec.KindDNS:
		return normalizeDNS(entries[0])
	}
	return invalid(kind)
}

// asFloat converts a decoded JSON value to a float64 if it is a number.
func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// asString converts a decoded JSON value to a string if it is one.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

func normalizePing(entry json.RawMessage) NodeResult {
	var attempts [][]any
	if err := json.Unmarshal(entry, &attempts); err != nil || len(attempts) < 2 {
		return invalid(spec.KindPing)
	}

	total := len(attempts)
	successes := 0
	var rtts []float64
	for _, a := range attempts {
		if len(a) == 0 || asString(a[0]) != "OK" {
			continue
		}
		successes++
		if len(a) > 1 {
			if rtt, ok := asFloat(a[1]); ok {
				rtts = append(rtts, rtt*1000)
			}
		}
	}

	m := &PingMetrics{PacketLoss: 100}
	if total > 0 {
		m.PacketLoss = float64(total-successes) / float64(total) * 100
	}
	if len(rtts) > 0 {
		min, max, sum := rtts[0], rtts[0], 0.0
		for _, rtt := range rtts {
			if rtt < min {
				min = rtt
			}
			if rtt > max {
				max = rtt
			}
			sum += rtt
		}
		m.AvgLatency = sum / float64(len(rtts))
		m.MinLatency = min
		m.MaxLatency = max
	}
	if len(attempts[0]) > 2 {
		m.IP = asString(attempts[0][2])
	}
	return NodeResult{Success: successes > 0, Ping: m}
}

func normalizeHTTP(entry json.RawMessage) NodeResult {
	var fields []any
	if err := json.Unmarshal(entry, &fields); err != nil || len(fields) < 4 {
		return invalid(spec.KindHTTP)
	}
	flag, _ := asFloat(fields[0])
	rt, _ := asFloat(fields[1])
	code, _ := asFloat(fields[3])
	m := &HTTPMetrics{
		ResponseTime: rt * 1000,
		StatusMsg:    asString(fields[2]),
		StatusCode:   int(code),
	}
	if len(fields) > 4 {
		m.IP = asString(fields[4])
	}
	return NodeResult{Success: flag == 1, HTTP: m}
}

func normalizeTCP(entry json.RawMessage) NodeResult {
	var fields []any
	if err := json.Unmarshal(entry, &fields); err != nil || len(fields) < 2 {
		return invalid(spec.KindTCP)
	}
	flag, _ := asFloat(fields[0])
	ct, _ := asFloat(fields[1])
	m := &TCPMetrics{ConnectTime: ct * 1000}
	if len(fields) > 2 {
		m.IP = asString(fields[2])
	}
	return NodeResult{Success: flag == 1, TCP: m}
}

func normalizeUDP(entry json.RawMessage) NodeResult {
	var fields []any
	if err := json.Unmarshal(entry, &fields); err != nil || len(fields) < 2 {
		return invalid(spec.KindUDP)
	}
	flag, _ := asFloat(fields[0])
	rt, _ := asFloat(fields[1])
	m := &UDPMetrics{ResponseTime: rt * 1000}
	if len(fields) > 2 {
		m.IP = asString(fields[2])
	}
	return NodeResult{Success: flag == 1, UDP: m}
}

func normalizeDNS(entry json.RawMessage) NodeResult {
	var records [][]any
	if err := json.Unmarshal(entry, &records); err != nil || len(records) == 0 {
		return invalid(spec.KindDNS)
	}
	m := &DNSMetrics{}
	if len(records[0]) > 0 {
		if t, ok := asFloat(records[0][0]); ok {
			m.ResolutionTime = t * 1000
		}
	}
	// Records whose address field is null or not a string are skipped
	// entirely rather than kept as empty entries.
	for _, rec := range records {
		if len(rec) > 1 {
			if addr := asString(rec[1]); addr != "" {
				m.Addresses = append(m.Addresses, addr)
			}
		}
	}
	// A well-formed DNS entry counts as a successful resolution even when it
	// contains no addresses.
	return NodeResult{Success: true, DNS: m}
}
