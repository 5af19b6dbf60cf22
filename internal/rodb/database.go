package rodb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Tuning profile defaults and open behaviour constants.
const (
	// defaultCacheSizePages is the page-cache budget applied on open.
	// Passed to SQLite as a negative cache_size, i.e. a page count.
	defaultCacheSizePages = 64000

	// defaultMmapSize is the memory-mapped I/O ceiling in bytes (256 MiB).
	defaultMmapSize = 268435456

	// openTimeout bounds the connection verification performed by Open.
	openTimeout = 5 * time.Second
)

// Logger is the logging interface used by this package.
// It matches the logging package's structured methods.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config contains read-only database settings.
// These map to the database section of config.yaml.
type Config struct {
	// Path is the filesystem path to an existing SQLite database file.
	// The file is never created or written.
	Path string

	// CacheSizePages overrides the page-cache budget. Zero means the
	// default of 64,000 pages.
	CacheSizePages int

	// MmapSize overrides the memory-mapped I/O ceiling in bytes.
	// Zero means the default of 256 MiB.
	MmapSize int64

	// Logger receives tuning and lifecycle diagnostics. Optional.
	Logger Logger
}

// DB is a handle to one read-only SQLite database file.
//
// A handle owns at most one live native connection. All query execution and
// Close are serialised through an internal mutex, so the connection is
// never used from two goroutines at the same instant and Close always waits
// behind an in-flight query.
type DB struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	logger Logger
}

// Open opens the database file strictly in read-only mode.
//
// It fails if the file does not exist, is not a valid SQLite database, or
// cannot be opened read-only. On success the fixed tuning profile is
// applied best-effort: individual pragma failures are logged at debug level
// and never fail the open.
//
// On failure no native resource is leaked; a subsequent Open with a valid
// path succeeds.
//
// Parameters:
//   - cfg: Database configuration (path required)
//
// Returns:
//   - *DB: Open handle ready for queries
//   - error: ErrOpenFailed wrapping the engine message on failure
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrOpenFailed)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	// mode=ro refuses creation and writes at the VFS level; the full mutex
	// matches the single-connection serialisation this handle enforces.
	// See: https://github.com/mattn/go-sqlite3#connection-string
	dsn := fmt.Sprintf("file:%s?mode=ro&_mutex=full", cfg.Path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	// One native connection per handle. Queries hold the handle mutex, so
	// pool growth would only add unused connections.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	// sql.Open is lazy; force the connection and read the database header
	// so a missing file or garbage content fails here, not at first query.
	var schemaVersion int
	if err := sqlDB.QueryRowContext(ctx, "PRAGMA schema_version").Scan(&schemaVersion); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	db := &DB{
		db:     sqlDB,
		path:   cfg.Path,
		logger: logger,
	}

	db.applyTuning(ctx, cfg)

	return db, nil
}

// applyTuning applies the fixed read-throughput profile, best-effort.
// Failures are expected on some files (e.g. journal_mode on a WAL database
// opened read-only) and are logged at debug level only.
func (db *DB) applyTuning(ctx context.Context, cfg Config) {
	cachePages := cfg.CacheSizePages
	if cachePages <= 0 {
		cachePages = defaultCacheSizePages
	}
	mmapSize := cfg.MmapSize
	if mmapSize <= 0 {
		mmapSize = defaultMmapSize
	}

	pragmas := []string{
		"PRAGMA journal_mode=OFF",
		"PRAGMA synchronous=OFF",
		fmt.Sprintf("PRAGMA cache_size=-%d", cachePages),
		fmt.Sprintf("PRAGMA mmap_size=%d", mmapSize),
		"PRAGMA temp_store=MEMORY",
		"PRAGMA query_only=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.db.ExecContext(ctx, pragma); err != nil {
			db.logger.Debug("tuning pragma not applied",
				"pragma", pragma,
				"error", err,
			)
		}
	}
}

// Close releases the native connection.
//
// Close is idempotent and always succeeds: closing an already-closed handle
// is a no-op, and any underlying release error is logged rather than
// returned. Close waits behind an in-flight query on the same handle.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.db == nil {
		return nil
	}
	if err := db.db.Close(); err != nil {
		db.logger.Debug("error releasing database connection", "error", err)
	}
	db.db = nil
	return nil
}

// Path returns the filesystem path the handle was opened with.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	if _, err := db.Query(ctx, "SELECT 1", nil); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
