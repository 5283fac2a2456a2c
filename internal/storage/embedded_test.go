package storage_test

import (
	"context"
	"testing"

	wiki "github.com/goliatone/go-wiki"
	"github.com/goliatone/go-wiki/internal/storage"
)

// Applies the shipped migration files, comment headers included, rather
// than synthetic fixtures.
func TestApplyShippedMigrations(t *testing.T) {
	db, err := storage.Open(storage.DriverSQLite, "file:storageshipped?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := storage.ApplyMigrations(ctx, db, wiki.GetMigrationsFS(), "data/sql/migrations"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	tables := []string{"wiki_pages", "wiki_page_versions", "wiki_categories", "wiki_page_index"}
	for _, table := range tables {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
