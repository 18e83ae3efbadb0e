package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hostprobe/hostprobe/internal/persistence"
	"github.com/hostprobe/hostprobe/internal/render"
	"github.com/hostprobe/hostprobe/pkg/checkhost/spec"
)

var menu = []struct {
	kind   spec.Kind
	prompt string
}{
	{spec.KindPing, "Enter host to ping: "},
	{spec.KindHTTP, "Enter URL to test (include http:// or https://): "},
	{spec.KindTCP, "Enter host: "},
	{spec.KindUDP, "Enter host: "},
	{spec.KindDNS, "Enter domain to resolve: "},
}

// interactive runs the prompt loop used when no subcommand is given. A failed
// check is reported and the loop continues; only Ctrl-C ends the session.
// When live node fetching is enabled the catalog is re-resolved before every
// check, so long sessions see nodes appear and disappear backend-side.
func interactive() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cl, nodeIDs, live := setup(ctx)
	if live != nil {
		defer live.Stop()
	}
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== hostprobe ===")
	for {
		fmt.Println("\nOptions:")
		for i, item := range menu {
			fmt.Printf("%d. %s test\n", i+1, item.kind.Label())
		}
		fmt.Println("0. Exit")

		choice := readLine(reader, "Enter your choice: ")
		if choice == "0" || choice == "" {
			return
		}
		idx := int(choice[0] - '1')
		if len(choice) != 1 || idx < 0 || idx >= len(menu) {
			fmt.Println("Invalid choice. Please try again.")
			continue
		}

		item := menu[idx]
		target := readLine(reader, item.prompt)
		if target == "" {
			continue
		}

		if live != nil {
			cl.SetCatalog(live.Current(ctx))
		}
		report, ar, err := execute(ctx, cl, item.kind, target, nodeIDs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Check failed", "kind", item.kind, "error", err)
			continue
		}
		render.Table(os.Stdout, item.kind, report)

		if strings.EqualFold(readLine(reader, "\nSave results to file? (y/n): "), "y") {
			path := readLine(reader, "Enter filename: ")
			if path == "" {
				continue
			}
			name := readLine(reader, "Format (json/text): ")
			if name == "" {
				name = "json"
			}
			format, err := persistence.ParseFormat(name)
			if err != nil {
				log.Error("Not saved", "error", err)
				continue
			}
			if err := persistence.WriteReport(path, format, ar); err != nil {
				log.Error("Not saved", "error", err)
				continue
			}
			fmt.Printf("Results saved to %s\n", path)
		}
	}
}

func readLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}
