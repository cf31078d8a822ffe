package infra

import (
	"context"
	"testing"
)

func TestEnsureSQLiteSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := EnsureSQLiteSchema(ctx, db); err != nil {
			t.Fatalf("ensure schema (pass %d): %v", i+1, err)
		}
	}

	var count int
	row := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'profiles', 'categories', 'schemes')`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 tables, got %d", count)
	}
}

func TestNewSQLiteRequiresPath(t *testing.T) {
	if _, err := NewSQLite(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
