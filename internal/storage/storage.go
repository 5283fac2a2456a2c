// Package storage opens the relational handle shared by the table and
// blob-index backends and applies the embedded schema migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/goliatone/go-wiki/internal/store"
)

// Supported driver names for Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds a bun handle for the configured driver. SQLite memory
// databases are pinned to a single connection so every query sees the
// same in-memory file.
func Open(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, store.WrapBackend(err, "open sqlite database")
		}
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			sqlDB.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case DriverPostgres, "pg", "postgresql":
		sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, store.WrapBackend(fmt.Errorf("unknown driver %q", driver), "open database")
	}
}

// ApplyMigrations executes every *.sql file in fsys in lexical order,
// recording applied names in wiki_migrations so reruns are no-ops.
func ApplyMigrations(ctx context.Context, db *bun.DB, fsys fs.FS, dir string) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS wiki_migrations (name TEXT PRIMARY KEY, applied_at TIMESTAMP NOT NULL)`); err != nil {
		return store.WrapBackend(err, "create migration ledger")
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return store.WrapBackend(err, "read migration directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := migrationApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		script, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return store.WrapBackend(err, "read migration "+name)
		}

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, stmt := range splitStatements(string(script)) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %s: %w", name, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO wiki_migrations (name, applied_at) VALUES (?, CURRENT_TIMESTAMP)`, name)
			return err
		})
		if err != nil {
			return store.WrapBackend(err, "apply migration "+name)
		}
	}
	return nil
}

func migrationApplied(ctx context.Context, db *bun.DB, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM wiki_migrations WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, store.WrapBackend(err, "check migration "+name)
	}
	return count > 0, nil
}

// splitStatements breaks a migration script on semicolons, dropping
// comment lines first so a statement preceded by a comment survives.
// Migrations in this repo avoid procedural SQL so this is sufficient.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(stripCommentLines(part))
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func stripCommentLines(chunk string) string {
	lines := strings.Split(chunk, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
