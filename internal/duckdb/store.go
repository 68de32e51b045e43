package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tinytelemetry/fleetlens/internal/duckdb/migrate"
	"github.com/tinytelemetry/fleetlens/internal/metrics"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// Store manages the DuckDB database connection and provides query methods.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	QueryTimeout time.Duration

	// readSem bounds concurrent reads; nil means unbounded.
	readSem chan struct{}
}

var _ model.ReadAPI = (*Store)(nil)
var _ model.ServerWriter = (*Store)(nil)

// NewStore opens or creates a DuckDB database.
// If dbPath is empty, an in-memory database is used.
// An optional queryTimeout can be passed; it defaults to 30s.
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		// Ensure parent directory exists
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}

	qt := model.DefaultQueryTimeout
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		qt = queryTimeout[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), qt)
	defer cancel()
	if err := migrate.NewRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: qt,
	}, nil
}

// SetMaxConcurrentQueries bounds the number of reads running at once.
// n <= 0 removes the bound. Call before the store is shared.
func (s *Store) SetMaxConcurrentQueries(n int) {
	if n <= 0 {
		s.readSem = nil
		return
	}
	s.readSem = make(chan struct{}, n)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access (seeding, tests).
func (s *Store) DB() *sql.DB {
	return s.db
}

// DBPath returns the configured DuckDB path. Empty means in-memory DB.
func (s *Store) DBPath() string {
	return s.dbPath
}

// Checkpoint flushes the write-ahead log into the database file so another
// process opening it sees every committed write.
func (s *Store) Checkpoint(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dbPath == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// queryCtx returns a context derived from parent with the store's query timeout.
func (s *Store) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.QueryTimeout)
}

// acquire takes a read slot, honouring ctx cancellation.
func (s *Store) acquire(ctx context.Context) (release func(), err error) {
	if s.readSem == nil {
		return func() {}, nil
	}
	select {
	case s.readSem <- struct{}{}:
		return func() { <-s.readSem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// read runs fn under the read lock, a read slot and the query timeout,
// recording its duration under op.
func (s *Store) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	start := time.Now()
	release, err := s.acquire(ctx)
	if err == nil {
		err = fn(ctx)
		release()
	}
	metrics.RecordQuery(op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
	}
	return nil
}
