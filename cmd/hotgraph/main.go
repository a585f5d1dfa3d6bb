package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/synthline/hotgraph/pkg/config"
	"github.com/synthline/hotgraph/pkg/hotgraph"
	"github.com/synthline/hotgraph/pkg/logging"
	"github.com/synthline/hotgraph/pkg/model"
	"github.com/synthline/hotgraph/pkg/output"
	"github.com/synthline/hotgraph/pkg/store"
	"github.com/synthline/hotgraph/pkg/watcher"
	"github.com/synthline/hotgraph/pkg/web"
)

const usage = `Usage: hotgraph [flags] <command> [args]

Commands:
  init                     create a sample graph store document
  neighbors <id>           list neighbors of a component
  path <start> <end>       find a shortest path between two components
  zone <name>              list members of a zone
  zones                    list declared zones
  dirty <id> [id...]       mark components as modified
  sync                     flush dirty components and rebuild
  stats                    print cache diagnostics
  serve                    run the web server (also --serve)
`

func main() {
	flags := pflag.NewFlagSet("hotgraph", pflag.ExitOnError)
	flags.String("store", "hotgraph.json", "Path to the graph store document")
	flags.Bool("serve", false, "Run the web server instead of a one-shot command")
	flags.Int("port", 8080, "Port for the web server")
	flags.Bool("watch", false, "Reload when the store document changes on disk (serve mode)")
	flags.Int("max-hops", 8, "Default hop bound for path queries")
	flags.String("verbosity", "info", "Log level: debug, info, warn, error")
	flags.Bool("json-logs", false, "JSON log output")
	focusList := flags.StringSlice("focus", nil, "Narrow query results to these component ids")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level: logging.ParseLevel(cfg.Verbosity),
		JSON:  cfg.JSONLogs,
	})

	args := flags.Args()
	if len(args) == 0 && !cfg.Serve {
		flags.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	st := store.NewFileStore(cfg.Store)

	if len(args) > 0 && args[0] == "init" {
		if err := st.Init(sampleGraph()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote sample graph to %s\n", cfg.Store)
		return
	}

	svc, err := hotgraph.New(ctx, st, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(*focusList) > 0 {
		svc.Focus(*focusList...)
	}

	if cfg.Serve || (len(args) > 0 && args[0] == "serve") {
		serve(ctx, cfg, st, svc, logger)
		return
	}

	if err := runCommand(ctx, cfg, svc, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, cfg *config.Config, svc *hotgraph.Service, args []string) error {
	switch args[0] {
	case "neighbors":
		if len(args) != 2 {
			return fmt.Errorf("usage: hotgraph neighbors <id>")
		}
		nbrs, err := svc.Neighbors(args[1])
		if err != nil {
			return err
		}
		output.PrintIDs("Neighbors of "+args[1], nbrs)
		return nil

	case "path":
		if len(args) < 3 || len(args) > 4 {
			return fmt.Errorf("usage: hotgraph path <start> <end> [maxHops]")
		}
		maxHops := cfg.MaxHops
		if len(args) == 4 {
			n, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("maxHops must be an integer: %q", args[3])
			}
			maxHops = n
		}
		path, err := svc.Path(args[1], args[2], maxHops)
		if err != nil {
			return err
		}
		output.PrintPath(path)
		return nil

	case "zone":
		if len(args) != 2 {
			return fmt.Errorf("usage: hotgraph zone <name>")
		}
		members, err := svc.ZoneMembers(args[1])
		if err != nil {
			return err
		}
		output.PrintIDs("Zone "+args[1], members)
		return nil

	case "zones":
		output.PrintIDs("Zones", svc.ZoneNames())
		return nil

	case "dirty":
		if len(args) < 2 {
			return fmt.Errorf("usage: hotgraph dirty <id> [id...]")
		}
		count, err := svc.MarkDirty(args[1:]...)
		if err != nil {
			return err
		}
		fmt.Printf("Dirty nodes: %d\n", count)
		return nil

	case "sync":
		rev, err := svc.Sync(ctx, 0)
		if err != nil {
			return err
		}
		fmt.Printf("Synced at revision %d\n", rev)
		return nil

	case "stats":
		output.PrintStatsReport(cfg.Store, svc.Stats())
		return nil

	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], strings.TrimRight(usage, "\n"))
	}
}

func serve(ctx context.Context, cfg *config.Config, st *store.FileStore, svc *hotgraph.Service, logger *slog.Logger) {
	if cfg.Watch {
		w := watcher.New(st.Path(), 250*time.Millisecond, func(ctx context.Context) {
			if err := svc.Reload(ctx); err != nil {
				logger.Error("reload after store change failed", "error", err)
			}
		}, logger)
		if err := w.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: starting watcher: %v\n", err)
			os.Exit(1)
		}
	}

	server := web.NewServer(svc, logger, cfg.MaxHops)
	if err := server.Start(cfg.Port); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sampleGraph() *model.Graph {
	g := model.NewGraph()
	for _, n := range []model.Node{
		{ID: "usb", Kind: model.KindHardware, Attrs: map[string]string{"role": "transport"}},
		{ID: "teensy", Kind: model.KindHardware, Attrs: map[string]string{"role": "controller"}},
		{ID: "dac1", Kind: model.KindHardware, Attrs: map[string]string{"domain": "analog"}},
		{ID: "amp1", Kind: model.KindHardware, Attrs: map[string]string{"domain": "analog"}},
		{ID: "psu", Kind: model.KindHardware, Attrs: map[string]string{"domain": "power"}},
		{ID: "firmware", Kind: model.KindSoftware, Attrs: map[string]string{"lang": "cpp"}},
		{ID: "mixer", Kind: model.KindSoftware, Attrs: map[string]string{"lang": "cpp"}},
	} {
		g.AddNode(n)
	}
	for _, e := range []model.Edge{
		{Source: "dac1", Target: "amp1", Kind: model.EdgeElectrical},
		{Source: "teensy", Target: "dac1", Kind: model.EdgeData},
		{Source: "usb", Target: "teensy", Kind: model.EdgeData},
		{Source: "psu", Target: "amp1", Kind: model.EdgeElectrical},
		{Source: "psu", Target: "teensy", Kind: model.EdgeElectrical},
		{Source: "firmware", Target: "teensy", Kind: model.EdgeLogical},
		{Source: "mixer", Target: "firmware", Kind: model.EdgeLogical},
	} {
		g.AddEdge(e)
	}
	g.Zones = []model.ZoneRule{
		{Name: "power_analog", Members: []string{"dac1", "amp1"}},
		{Name: "analog", Match: map[string]string{"domain": "analog"}},
		{Name: "software", Kind: model.KindSoftware},
	}
	return g
}
