package duckdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

func TestPool_OpensOnceAndReuses(t *testing.T) {
	opens := 0
	pool := NewPoolFunc(func(ctx context.Context) (model.ReadAPI, error) {
		opens++
		return NewStore("")
	})
	defer pool.Close()

	ctx := context.Background()
	a, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	b, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if a != b {
		t.Error("expected the same store instance")
	}
	if opens != 1 {
		t.Errorf("opens = %d, want 1", opens)
	}
}

func TestPool_FailedOpenIsRetried(t *testing.T) {
	opens := 0
	pool := NewPoolFunc(func(ctx context.Context) (model.ReadAPI, error) {
		opens++
		if opens == 1 {
			return nil, errors.New("connection refused")
		}
		return NewStore("")
	})
	defer pool.Close()

	ctx := context.Background()
	if _, err := pool.Acquire(ctx); !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("first Acquire err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := pool.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if opens != 2 {
		t.Errorf("opens = %d, want 2", opens)
	}
}

func TestNewPool_NotConfigured(t *testing.T) {
	pool := NewPool(PoolConfig{})
	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrNotConfigured) || !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrNotConfigured wrapped in ErrStoreUnavailable", err)
	}
}

func TestNewPool_OnDisk(t *testing.T) {
	pool := NewPool(PoolConfig{
		DBPath:               filepath.Join(t.TempDir(), "fleet.duckdb"),
		MaxConcurrentQueries: 2,
	})
	defer pool.Close()

	store, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	agg, err := store.Aggregations(context.Background())
	if err != nil {
		t.Fatalf("Aggregations: %v", err)
	}
	if len(agg.Servers) != 0 {
		t.Errorf("expected empty store, got %d servers", len(agg.Servers))
	}
}

func TestPool_CloseWithoutOpen(t *testing.T) {
	pool := NewPoolFunc(func(ctx context.Context) (model.ReadAPI, error) {
		t.Fatal("open must not be called")
		return nil, nil
	})
	if err := pool.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
