// Package render prints normalized check reports as aligned, colorized
// tables, one row per vantage point.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
	"github.com/hostprobe/hostprobe/pkg/results"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// statusWords returns the row status vocabulary for the kind, e.g. TCP rows
// read OPEN/CLOSED rather than UP/DOWN.
func statusWords(kind spec.Kind) (good, bad string) {
	switch kind {
	case spec.KindTCP:
		return "OPEN", "CLOSED"
	case spec.KindDNS:
		return "OK", "FAIL"
	}
	return "UP", "DOWN"
}

func status(kind spec.Kind, nr results.NodeResult) string {
	good, bad := statusWords(kind)
	switch {
	case nr.Error != "":
		return badStyle.Render(pad("ERROR", 10))
	case nr.Success:
		return goodStyle.Render(pad(good, 10))
	}
	return badStyle.Render(pad(bad, 10))
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Table writes the report for the given kind to w.
func Table(w io.Writer, kind spec.Kind, report results.Report) {
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(strings.ToUpper(kind.Label())+" RESULTS:"))
	switch kind {
	case spec.KindPing:
		pingTable(w, report)
	case spec.KindHTTP:
		httpTable(w, report)
	case spec.KindTCP:
		tcpTable(w, report)
	case spec.KindUDP:
		udpTable(w, report)
	case spec.KindDNS:
		dnsTable(w, report)
	}
}

func pingTable(w io.Writer, report results.Report) {
	fmt.Fprintf(w, "%-30s %-10s %-15s %-25s %s\n",
		"Location", "Status", "Packet Loss", "Latency (min/avg/max)", "IP")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, loc := range report.Locations() {
		nr := report[loc]
		loss, latency, ip := "N/A", "N/A", "N/A"
		switch {
		case nr.Error != "":
			latency = nr.Error
		case nr.Ping != nil:
			loss = fmt.Sprintf("%.1f%%", nr.Ping.PacketLoss)
			if nr.Success {
				latency = fmt.Sprintf("%.1f/%.1f/%.1f ms",
					nr.Ping.MinLatency, nr.Ping.AvgLatency, nr.Ping.MaxLatency)
				ip = orNA(nr.Ping.IP)
			}
		}
		fmt.Fprintf(w, "%-30s %s %-15s %-25s %s\n",
			loc, status(spec.KindPing, nr), loss, latency, ip)
	}
}

func httpTable(w io.Writer, report results.Report) {
	fmt.Fprintf(w, "%-30s %-10s %-18s %-15s %s\n",
		"Location", "Status", "Response Code", "Response Time", "IP")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, loc := range report.Locations() {
		nr := report[loc]
		code, rt, ip := "N/A", "N/A", "N/A"
		switch {
		case nr.Error != "":
			rt = nr.Error
		case nr.Success && nr.HTTP != nil:
			code = strings.TrimSpace(fmt.Sprintf("%d %s", nr.HTTP.StatusCode, nr.HTTP.StatusMsg))
			rt = fmt.Sprintf("%.1f ms", nr.HTTP.ResponseTime)
			ip = orNA(nr.HTTP.IP)
		}
		fmt.Fprintf(w, "%-30s %s %-18s %-15s %s\n",
			loc, status(spec.KindHTTP, nr), code, rt, ip)
	}
}

func tcpTable(w io.Writer, report results.Report) {
	fmt.Fprintf(w, "%-30s %-10s %-15s %s\n", "Location", "Status", "Connect Time", "IP")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, loc := range report.Locations() {
		nr := report[loc]
		ct, ip := "N/A", "N/A"
		switch {
		case nr.Error != "":
			ct = nr.Error
		case nr.Success && nr.TCP != nil:
			ct = fmt.Sprintf("%.1f ms", nr.TCP.ConnectTime)
			ip = orNA(nr.TCP.IP)
		}
		fmt.Fprintf(w, "%-30s %s %-15s %s\n", loc, status(spec.KindTCP, nr), ct, ip)
	}
}

func udpTable(w io.Writer, report results.Report) {
	fmt.Fprintf(w, "%-30s %-10s %-15s %s\n", "Location", "Status", "Response Time", "IP")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, loc := range report.Locations() {
		nr := report[loc]
		rt, ip := "N/A", "N/A"
		switch {
		case nr.Error != "":
			rt = nr.Error
		case nr.Success && nr.UDP != nil:
			rt = fmt.Sprintf("%.1f ms", nr.UDP.ResponseTime)
			ip = orNA(nr.UDP.IP)
		}
		fmt.Fprintf(w, "%-30s %s %-15s %s\n", loc, status(spec.KindUDP, nr), rt, ip)
	}
}

func dnsTable(w io.Writer, report results.Report) {
	fmt.Fprintf(w, "%-30s %-10s %-20s %s\n", "Location", "Status", "Resolution Time", "Addresses")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, loc := range report.Locations() {
		nr := report[loc]
		rt, addrs := "N/A", "N/A"
		switch {
		case nr.Error != "":
			addrs = nr.Error
		case nr.Success && nr.DNS != nil:
			rt = fmt.Sprintf("%.1f ms", nr.DNS.ResolutionTime)
			if len(nr.DNS.Addresses) > 0 {
				addrs = strings.Join(nr.DNS.Addresses, ", ")
			}
		}
		fmt.Fprintf(w, "%-30s %s %-20s %s\n", loc, status(spec.KindDNS, nr), rt, addrs)
	}
}
