package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var dbSeq atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory SQLite database. Each call
// gets its own namespace so parallel tests never share state. Callers
// should SetMaxOpenConns(1) before handing the handle to bun.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:wikitest%d?mode=memory&cache=shared", dbSeq.Add(1))
	return sql.Open("sqlite3", dsn)
}
