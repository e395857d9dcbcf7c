package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/vjranagit/apmfetch/internal/config"
	"github.com/vjranagit/apmfetch/pkg/cache"
	"github.com/vjranagit/apmfetch/pkg/client"
	"github.com/vjranagit/apmfetch/pkg/engine"
	"github.com/vjranagit/apmfetch/pkg/mockapi"
)

const (
	version = "0.1.0"
)

func main() {
	fmt.Printf("apmfetch v%s\n", version)
	fmt.Println("APM metrics fetcher with chunked range queries and disk caching")
	fmt.Println()

	// Load configuration
	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "query":
		runQuery(cfg, os.Args[2:])
	case "apps":
		runApps(cfg)
	case "mock":
		runMock(cfg)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  apmfetch query -app <id> -duration <d> [-period <d>] -metrics <a,b> -values <x,y> [-end <RFC3339>] [-no-cache]")
	fmt.Println("  apmfetch apps")
	fmt.Println("  apmfetch mock")
}

func runQuery(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	appID := fs.Int("app", 0, "application id (below 1 targets the mock endpoint)")
	duration := fs.Duration("duration", time.Hour, "length of the time window")
	end := fs.String("end", "", "window end time, RFC3339 (default: now)")
	period := fs.Duration("period", 0, "sampling period (0 lets the service choose)")
	metrics := fs.String("metrics", "", "comma-separated metric names")
	values := fs.String("values", "", "comma-separated value names")
	noCache := fs.Bool("no-cache", false, "bypass the result cache")
	fs.Parse(args)

	var endTime time.Time
	if *end != "" {
		t, err := time.Parse(time.RFC3339, *end)
		if err != nil {
			log.Fatalf("Invalid end time: %v", err)
		}
		endTime = t
	}

	resultCache := openCache(cfg)
	if resultCache != nil {
		defer resultCache.Close()
	}

	c := client.NewClient(cfg.API.Host, cfg.API.Key, cfg.API.Timeout)
	eng := engine.New(c, resultCache)

	req := engine.Request{
		AccountID: cfg.API.AccountID,
		AppID:     *appID,
		Duration:  *duration,
		EndTime:   endTime,
		Period:    *period,
		Metrics:   splitList(*metrics),
		Values:    splitList(*values),
		UseCache:  cfg.Cache.Enabled && !*noCache,
		Progress: engine.ProgressFunc(func(completed, total int) {
			log.Printf("Fetched chunk %d/%d", completed, total)
		}),
	}

	table, err := eng.Query(context.Background(), req)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	log.Printf("Query returned %d rows", len(table))
	for _, row := range table {
		names := make([]string, 0, len(row.Values))
		for name := range row.Values {
			names = append(names, name)
		}
		sort.Strings(names)

		cols := make([]string, 0, len(names))
		for _, name := range names {
			cols = append(cols, fmt.Sprintf("%s=%g", name, row.Values[name]))
		}
		fmt.Printf("%s\t%s\t%s\n", row.Metric, row.From.Format(time.RFC3339), strings.Join(cols, "\t"))
	}
}

func runApps(cfg *config.Config) {
	c := client.NewClient(cfg.API.Host, cfg.API.Key, cfg.API.Timeout)

	apps, err := c.Applications(context.Background())
	if err != nil {
		log.Fatalf("Listing applications failed: %v", err)
	}

	log.Printf("%d applications reporting traffic", len(apps))
	for _, app := range apps {
		fmt.Printf("%d\t%s\t%.1f rpm\n", app.ID, app.Name, app.Throughput)
	}
}

func runMock(cfg *config.Config) {
	server := mockapi.NewServer(cfg.Mock.ListenAddr)

	go func() {
		log.Printf("Mock API server listening on %s", cfg.Mock.ListenAddr)
		if err := server.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
}

// openCache builds the configured cache, or returns nil when caching is
// off. Cache setup failures are not fatal: the query just runs uncached.
func openCache(cfg *config.Config) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	var store cache.Store
	if cfg.Cache.Backend == config.BackendBadger {
		s, err := cache.NewBadgerStore(cfg.Cache.Root)
		if err != nil {
			log.Printf("Cache disabled: %v", err)
			return nil
		}
		store = s
	} else {
		store = cache.NewFileStore(cfg.Cache.Root)
	}

	c, err := cache.New(store, cfg.Cache.CompressionLevel)
	if err != nil {
		log.Printf("Cache disabled: %v", err)
		store.Close()
		return nil
	}
	return c
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
