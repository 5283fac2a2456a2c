package storage

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"migrations/0001_first.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE first (id TEXT PRIMARY KEY);\nCREATE INDEX idx_first ON first (id);"),
		},
		"migrations/0002_second.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE second (id TEXT PRIMARY KEY);"),
		},
		"migrations/README.md": &fstest.MapFile{Data: []byte("not sql")},
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "dsn"); err == nil {
		t.Fatal("unknown driver must fail")
	}
}

func TestApplyMigrations(t *testing.T) {
	db, err := Open(DriverSQLite, "file:storagetest?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	fsys := testFS()

	if err := ApplyMigrations(ctx, db, fsys, "migrations"); err != nil {
		t.Fatalf("apply: %v", err)
	}

	for _, table := range []string{"first", "second"} {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	var applied int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM wiki_migrations").Scan(&applied); err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}

	// Second run is a no-op.
	if err := ApplyMigrations(ctx, db, fsys, "migrations"); err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM wiki_migrations").Scan(&applied); err != nil {
		t.Fatalf("ledger recheck: %v", err)
	}
	if applied != 2 {
		t.Fatalf("reapply added rows: %d", applied)
	}
}

func TestSplitStatements(t *testing.T) {
	script := "CREATE TABLE a (id TEXT);\n\nCREATE INDEX b ON a (id);\n"
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2", len(stmts))
	}
}

func TestSplitStatementsKeepsCommentedStatements(t *testing.T) {
	script := "-- header comment\nCREATE TABLE a (id TEXT);\n-- index note\nCREATE INDEX b ON a (id);\n-- trailing comment\n"
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2: %q", len(stmts), stmts)
	}
	for _, stmt := range stmts {
		if !strings.HasPrefix(stmt, "CREATE") {
			t.Fatalf("statement lost its body: %q", stmt)
		}
	}
}
