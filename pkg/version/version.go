// Package version contains the hostprobe version.
package version

// Version is the hostprobe version. It is meant to be set at build time via
// the -ldflags flag.
var Version = "v0.0.0-dev"
