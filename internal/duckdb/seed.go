package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tinytelemetry/fleetlens/internal/logging"
	"github.com/tinytelemetry/fleetlens/internal/model"
)

// DefaultSeedBatchSize is the number of rows inserted per transaction by SeedServers.
const DefaultSeedBatchSize = 50

// optionalTablesDDL creates the tables that are not part of the migrated
// schema. Listing them tolerates their absence.
const optionalTablesDDL = `
CREATE SEQUENCE IF NOT EXISTS sessions_id_seq START 1;
CREATE TABLE IF NOT EXISTS sessions (
	id    BIGINT PRIMARY KEY DEFAULT nextval('sessions_id_seq'),
	label VARCHAR NOT NULL,
	value BIGINT NOT NULL
);
CREATE SEQUENCE IF NOT EXISTS signups_id_seq START 1;
CREATE TABLE IF NOT EXISTS signups (
	id          BIGINT PRIMARY KEY DEFAULT nextval('signups_id_seq'),
	name        VARCHAR NOT NULL,
	email       VARCHAR NOT NULL,
	plan        VARCHAR NOT NULL,
	signup_date DATE NOT NULL
);`

// InsertServers inserts records in a single transaction. Record ids are
// ignored; the table sequence assigns them.
func (s *Store) InsertServers(ctx context.Context, records []model.ServerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.insertTx(ctx, `INSERT INTO servers (os_release, server_type, department, region) VALUES (?, ?, ?, ?)`,
		len(records), func(ctx context.Context, stmt *sql.Stmt, i int) error {
			r := records[i]
			_, err := stmt.ExecContext(ctx, r.OSRelease, r.ServerType, r.Department, r.Region)
			return err
		})
}

// SeedServers inserts records in batches of batchSize, one transaction per
// batch. batchSize <= 0 selects DefaultSeedBatchSize.
func (s *Store) SeedServers(ctx context.Context, records []model.ServerRecord, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultSeedBatchSize
	}
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		if err := s.InsertServers(ctx, records[start:end]); err != nil {
			return fmt.Errorf("insert servers %d-%d: %w", start, end, err)
		}
		logging.Debug().Int("from", start).Int("to", end).Msg("seeded server batch")
	}
	return nil
}

// CreateOptionalTables creates the sessions and signups tables if missing.
func (s *Store) CreateOptionalTables(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, optionalTablesDDL); err != nil {
		return fmt.Errorf("create optional tables: %w", err)
	}
	return nil
}

// InsertSessions appends points to the sessions table.
func (s *Store) InsertSessions(ctx context.Context, sessions []model.Session) error {
	return s.insertTx(ctx, `INSERT INTO sessions (label, value) VALUES (?, ?)`,
		len(sessions), func(ctx context.Context, stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, sessions[i].Label, sessions[i].Value)
			return err
		})
}

// InsertSignups appends rows to the signups table. Dates use YYYY-MM-DD.
func (s *Store) InsertSignups(ctx context.Context, signups []model.Signup) error {
	return s.insertTx(ctx, `INSERT INTO signups (name, email, plan, signup_date) VALUES (?, ?, ?, CAST(? AS DATE))`,
		len(signups), func(ctx context.Context, stmt *sql.Stmt, i int) error {
			r := signups[i]
			_, err := stmt.ExecContext(ctx, r.Name, r.Email, r.Plan, r.Date)
			return err
		})
}

// insertTx prepares query once and executes it n times in one transaction.
func (s *Store) insertTx(ctx context.Context, query string, n int, exec func(ctx context.Context, stmt *sql.Stmt, i int) error) error {
	if n == 0 {
		return nil
	}
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(ctx, stmt, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
