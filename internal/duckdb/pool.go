package duckdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// ErrNotConfigured reports that no database path was configured.
var ErrNotConfigured = errors.New("database not configured")

// OpenFunc opens a read store.
type OpenFunc func(ctx context.Context) (model.ReadAPI, error)

// Pool opens the store on first use and hands the same instance to every
// later caller. A failed open is not remembered; the next Acquire retries.
type Pool struct {
	open OpenFunc

	mu    sync.Mutex
	store model.ReadAPI
}

// PoolConfig holds the settings used to open the on-disk store.
type PoolConfig struct {
	DBPath               string
	QueryTimeout         time.Duration
	MaxConcurrentQueries int
}

// NewPool returns a pool over the DuckDB file at cfg.DBPath.
// An empty path yields a pool whose Acquire always fails.
func NewPool(cfg PoolConfig) *Pool {
	return NewPoolFunc(func(ctx context.Context) (model.ReadAPI, error) {
		if cfg.DBPath == "" {
			return nil, ErrNotConfigured
		}
		store, err := NewStore(cfg.DBPath, cfg.QueryTimeout)
		if err != nil {
			return nil, err
		}
		store.SetMaxConcurrentQueries(cfg.MaxConcurrentQueries)
		return store, nil
	})
}

// NewPoolFunc returns a pool that opens stores with open.
func NewPoolFunc(open OpenFunc) *Pool {
	return &Pool{open: open}
}

// Acquire returns the shared store, opening it if needed.
// Failures are wrapped with model.ErrStoreUnavailable.
func (p *Pool) Acquire(ctx context.Context) (model.ReadAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store != nil {
		return p.store, nil
	}
	store, err := p.open(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("store open failed")
		return nil, fmt.Errorf("open store: %w: %w", model.ErrStoreUnavailable, err)
	}
	p.store = store
	logging.Info().Msg("store opened")
	return store, nil
}

// Close closes the shared store if one was opened.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store == nil {
		return nil
	}
	var err error
	if c, ok := p.store.(io.Closer); ok {
		err = c.Close()
	}
	p.store = nil
	return err
}
