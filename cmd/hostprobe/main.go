// Command hostprobe submits network-diagnostic checks (ping, http, tcp, udp,
// dns) to a distributed measurement backend and renders the per-location
// results. Without a subcommand it starts an interactive prompt.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"

	"github.com/hostprobe/hostprobe/internal/config"
	"github.com/hostprobe/hostprobe/internal/nodes"
	"github.com/hostprobe/hostprobe/internal/persistence"
	"github.com/hostprobe/hostprobe/internal/render"
	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
	"github.com/hostprobe/hostprobe/pkg/client"
	"github.com/hostprobe/hostprobe/pkg/results"
	"github.com/hostprobe/hostprobe/pkg/version"
)

const defaultNodeListTTL = 15 * time.Minute

var (
	flagConfig = flag.String("config", "", "Path to an optional hostprobe.yaml config file")
	flagAPI    = flag.String("api", "", "Measurement backend base URL")
	flagNode   = flagx.StringArray{}
	flagOutput = flag.String("output", "", "Path to save results to")
	flagFormat = flag.String("format", "json", "Format for saved results (json or text)")
	flagLive   = flag.Bool("live-nodes", false, "Fetch the current node list from the backend")
	flagRegion = flag.String("continent", "", "Restrict the check to nodes in this continent tag (EU, AS, NA, SA, EU-EAST)")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
)

func init() {
	flag.Var(&flagNode, "node", "Restrict the check to this node id (repeatable)")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: hostprobe <ping|http|tcp|udp|dns> <target> [flags]\n"+
			"       hostprobe            (interactive mode)\n\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	log.SetReportTimestamp(false)

	args := os.Args[1:]
	if len(args) == 0 {
		interactive()
		return
	}
	if strings.HasPrefix(args[0], "-") {
		flag.CommandLine.Parse(args)
		usage()
		os.Exit(2)
	}

	kind := spec.Kind(args[0])
	if !kind.Valid() {
		log.Error("Unknown check kind", "kind", args[0])
		usage()
		os.Exit(2)
	}
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		log.Error("Missing target", "kind", kind)
		usage()
		os.Exit(2)
	}
	target := args[1]
	flag.CommandLine.Parse(args[2:])
	if *flagDebug {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cl, nodeIDs, live := setup(ctx)
	if live != nil {
		defer live.Stop()
	}
	runCheck(ctx, cl, kind, target, nodeIDs)
}

// setup merges config file values with flags and builds the client. Flags win
// over file values; both win over compiled-in defaults. The returned
// LiveCatalog is nil unless live node fetching is enabled; callers own it and
// must Stop it when done.
func setup(ctx context.Context) (*client.Client, []string, *nodes.LiveCatalog) {
	var cfg config.Config
	if *flagConfig != "" {
		loaded, err := config.Load(*flagConfig)
		rtx.Must(err, "failed to load config")
		cfg = *loaded
	}

	base := cfg.APIBase
	if *flagAPI != "" {
		base = *flagAPI
	}
	if base == "" {
		base = spec.DefaultBaseURL
	}
	base = strings.TrimSuffix(base, "/")

	catalog := nodes.Default()
	var live *nodes.LiveCatalog
	if *flagLive || cfg.LiveNodes {
		ttl := cfg.NodeListTTL.Std()
		if ttl == 0 {
			ttl = defaultNodeListTTL
		}
		live = nodes.NewLive(base, ttl)
		catalog = live.Current(ctx)
	}

	nodeIDs := []string(flagNode)
	if len(nodeIDs) == 0 && *flagRegion != "" {
		nodeIDs = catalog.ByContinent(*flagRegion)
		if len(nodeIDs) == 0 {
			log.Error("No nodes in continent", "continent", *flagRegion)
			os.Exit(2)
		}
	}
	if len(nodeIDs) == 0 {
		nodeIDs = cfg.Nodes
	}
	for _, id := range nodeIDs {
		if _, ok := catalog.Lookup(id); !ok {
			log.Warn("Unknown node id, its results will be dropped", "node", id)
		}
	}

	cl := client.New("hostprobe", version.Version, client.Config{
		BaseURL:      base,
		Catalog:      catalog,
		Timeout:      cfg.RequestTimeout.Std(),
		PollInterval: cfg.PollInterval.Std(),
		PollCeiling:  cfg.PollCeiling.Std(),
		Emitter:      client.HumanReadable{Debug: *flagDebug},
	})
	return cl, nodeIDs, live
}

// execute runs the full submit/await/normalize flow and returns the report in
// both normalized and archival form. Per-node failures are absorbed into the
// report; only submission and poll-deadline failures return an error.
func execute(ctx context.Context, cl *client.Client, kind spec.Kind,
	target string, nodeIDs []string) (results.Report, results.ArchivalReport, error) {
	if kind == spec.KindHTTP && !strings.Contains(target, "://") {
		target = "http://" + target
	}

	start := time.Now()
	id, err := cl.Submit(ctx, kind, target, nodeIDs)
	if err != nil {
		return nil, results.ArchivalReport{}, err
	}
	raw, err := cl.Await(ctx, id)
	if err != nil {
		return nil, results.ArchivalReport{}, err
	}
	report := results.Normalize(kind, raw, cl.Catalog())
	ar := results.Archive(version.Version, uuid.NewString(), string(kind),
		target, string(id), start, time.Now(), report)
	return report, ar, nil
}

// runCheck is the one-shot subcommand path. Any top-level failure exits
// non-zero; per-node failures show up as ERROR rows instead.
func runCheck(ctx context.Context, cl *client.Client, kind spec.Kind,
	target string, nodeIDs []string) {
	report, ar, err := execute(ctx, cl, kind, target, nodeIDs)
	if err != nil {
		log.Error("Check failed", "kind", kind, "target", target, "error", err)
		os.Exit(1)
	}
	render.Table(os.Stdout, kind, report)

	if *flagOutput != "" {
		format, err := persistence.ParseFormat(*flagFormat)
		rtx.Must(err, "invalid -format")
		rtx.Must(persistence.WriteReport(*flagOutput, format, ar), "failed to save results")
		fmt.Printf("Results saved to %s\n", *flagOutput)
	}
}
