package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
)

const migrationCount = 2

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := NewRunner(db).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, table := range []string{"servers", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestServersIDDefaultsFromSequence(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := NewRunner(db).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := db.Exec("INSERT INTO servers (os_release, server_type, department, region) VALUES ('Linux', 'VM', 'IT', 'APAC'), ('AIX', 'VM', 'IT', 'EMEA')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var minID, maxID int64
	if err := db.QueryRow("SELECT MIN(id), MAX(id) FROM servers").Scan(&minID, &maxID); err != nil {
		t.Fatalf("select ids: %v", err)
	}
	if minID != 1 || maxID != 2 {
		t.Errorf("ids = [%d,%d], want [1,2]", minID, maxID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewRunner(db)

	if err := r.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != migrationCount || pending != 0 {
		t.Errorf("expected version=%d pending=0, got version=%d pending=%d", migrationCount, cur, pending)
	}
}

func TestStatusReportsCorrectly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewRunner(db)

	cur, pending, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != 0 || pending != migrationCount {
		t.Errorf("before run: expected version=0 pending=%d, got version=%d pending=%d", migrationCount, cur, pending)
	}

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cur, pending, err = r.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if cur != migrationCount || pending != 0 {
		t.Errorf("after run: expected version=%d pending=0, got version=%d pending=%d", migrationCount, cur, pending)
	}
}
