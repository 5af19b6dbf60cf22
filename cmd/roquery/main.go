// roquery - read-only SQLite query service
//
// This is the main entry point for roquery. It serves parameterised
// read-only queries against a single SQLite file, either as a long-running
// HTTP service backed by the asynchronous dispatcher, or as a one-shot
// command that runs a single query and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nerrad567/roquery/internal/api"
	"github.com/nerrad567/roquery/internal/dispatch"
	"github.com/nerrad567/roquery/internal/infrastructure/config"
	"github.com/nerrad567/roquery/internal/infrastructure/logging"
	"github.com/nerrad567/roquery/internal/rodb"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// shutdownTimeout bounds the drain of the dispatcher and HTTP server.
const shutdownTimeout = 10 * time.Second

// stringSlice collects repeated -param flags in order.
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (default: $ROQUERY_CONFIG or configs/config.yaml)")
		dbPath     = flag.String("db", "", "database file for one-shot mode (bypasses config)")
		query      = flag.String("query", "", "run one query, print the result, and exit")
		params     stringSlice
	)
	flag.Var(&params, "param", "positional text parameter for -query (repeatable)")
	flag.Parse()

	// One-shot mode: blocking query against a database given on the
	// command line, no config or service required.
	if *query != "" {
		if err := runOnce(*dbPath, *query, params); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, resolveConfigPath(*configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the service mode, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Path to the YAML configuration file
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting roquery",
		"version", version,
		"commit", commit,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the database read-only
	db, err := rodb.Open(rodb.Config{
		Path:           cfg.Database.Path,
		CacheSizePages: cfg.Database.CacheSizePages,
		MmapSize:       cfg.Database.MmapSize,
		Logger:         log.With("component", "rodb"),
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	log.Info("database opened read-only", "path", db.Path())

	// Start the dispatcher
	dispatcher := dispatch.New(db, dispatch.Config{
		Workers:   cfg.Dispatcher.Workers,
		QueueSize: cfg.Dispatcher.QueueSize,
	}, log.With("component", "dispatch"))
	log.Info("dispatcher started",
		"workers", cfg.Dispatcher.Workers,
		"queue_size", cfg.Dispatcher.QueueSize,
	)

	// Start the API server
	server, err := api.New(api.Deps{
		Config:     *cfg,
		Logger:     log.With("component", "api"),
		DB:         db,
		Dispatcher: dispatcher,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Orderly teardown: stop intake first, drain accepted work, then
	// release the handle. Close serialises behind pending queries.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Close(shutdownCtx); err != nil {
		log.Error("error closing API server", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("error draining dispatcher", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("error closing database", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// runOnce opens the database, runs a single blocking query, and prints the
// result as an aligned text table.
func runOnce(dbPath, query string, params []string) error {
	if dbPath == "" {
		return fmt.Errorf("-db is required with -query")
	}

	db, err := rodb.Open(rodb.Config{Path: dbPath})
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Close never fails

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := db.Query(ctx, query, params)
	if err != nil {
		return err
	}

	fmt.Print(formatTable(result))
	return nil
}

// resolveConfigPath picks the config path from the flag, the environment,
// or the default, in that order.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("ROQUERY_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

// formatTable renders a result as an aligned text table, one line per row.
// Statements with no columns render as an empty string.
func formatTable(result *rodb.Result) string {
	if len(result.Columns) == 0 {
		return ""
	}

	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = len(col)
	}
	for _, row := range result.Values {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	writeRow(result.Columns)
	separators := make([]string, len(result.Columns))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	writeRow(separators)
	for _, row := range result.Values {
		writeRow(row)
	}

	return b.String()
}
