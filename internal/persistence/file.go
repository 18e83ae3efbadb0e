// Package persistence saves check reports to disk.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hostprobe/hostprobe/pkg/results"
)

// Format selects the on-disk representation of a report.
type Format string

const (
	// FormatJSON writes the archival report as indented JSON.
	FormatJSON = Format("json")
	// FormatText writes a line-oriented key/value rendering.
	FormatText = Format("text")
)

// ParseFormat validates a format name from user input.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or text)", s)
}

// WriteReport writes the archival report to path in the given format. Values
// are written as-is; no rounding or reformatting is applied to metrics.
func WriteReport(path string, format Format, ar results.ArchivalReport) error {
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(ar, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
	case FormatText:
		data = []byte(renderText(ar))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return os.WriteFile(path, data, 0o644)
}

func renderText(ar results.ArchivalReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Check: %s %s (request %s)\n", ar.Kind, ar.Target, ar.RequestID)
	fmt.Fprintf(&b, "Run: %s at %s\n\n", ar.RunID, ar.StartTime.Format("2006-01-02T15:04:05Z07:00"))
	for _, row := range ar.Rows {
		fmt.Fprintf(&b, "Location: %s\n", row.Location)
		fmt.Fprintf(&b, "  success: %v\n", row.Success)
		if row.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", row.Error)
		}
		writeMetrics(&b, row.NodeResult)
		b.WriteString("\n")
	}
	return b.String()
}

func writeMetrics(b *strings.Builder, nr results.NodeResult) {
	switch {
	case nr.Ping != nil:
		fmt.Fprintf(b, "  avg_latency: %g\n", nr.Ping.AvgLatency)
		fmt.Fprintf(b, "  min_latency: %g\n", nr.Ping.MinLatency)
		fmt.Fprintf(b, "  max_latency: %g\n", nr.Ping.MaxLatency)
		fmt.Fprintf(b, "  packet_loss: %g\n", nr.Ping.PacketLoss)
		if nr.Ping.IP != "" {
			fmt.Fprintf(b, "  ip: %s\n", nr.Ping.IP)
		}
	case nr.HTTP != nil:
		fmt.Fprintf(b, "  response_time: %g\n", nr.HTTP.ResponseTime)
		fmt.Fprintf(b, "  status_code: %d\n", nr.HTTP.StatusCode)
		if nr.HTTP.StatusMsg != "" {
			fmt.Fprintf(b, "  status_msg: %s\n", nr.HTTP.StatusMsg)
		}
		if nr.HTTP.IP != "" {
			fmt.Fprintf(b, "  ip: %s\n", nr.HTTP.IP)
		}
	case nr.TCP != nil:
		fmt.Fprintf(b, "  connect_time: %g\n", nr.TCP.ConnectTime)
		if nr.TCP.IP != "" {
			fmt.Fprintf(b, "  ip: %s\n", nr.TCP.IP)
		}
	case nr.UDP != nil:
		fmt.Fprintf(b, "  response_time: %g\n", nr.UDP.ResponseTime)
		if nr.UDP.IP != "" {
			fmt.Fprintf(b, "  ip: %s\n", nr.UDP.IP)
		}
	case nr.DNS != nil:
		fmt.Fprintf(b, "  resolution_time: %g\n", nr.DNS.ResolutionTime)
		if len(nr.DNS.Addresses) > 0 {
			fmt.Fprintf(b, "  addresses: %s\n", strings.Join(nr.DNS.Addresses, ", "))
		}
	}
}
