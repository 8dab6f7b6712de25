package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Uint64

// NewSQLiteMemoryDB opens a named in-memory sqlite database. Every call gets
// its own database; connections of the returned pool share it.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", MemoryDSN(name))
}

// MemoryDSN returns a shared-cache in-memory DSN unique to this process call.
func MemoryDSN(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	if clean == "" {
		clean = "menus"
	}
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", clean, memoryDBSeq.Add(1))
}

// NewBunSQLiteDB opens an in-memory sqlite database private to the calling
// test, wrapped in bun, and closes it when the test ends. The database is
// empty until migrated.
func NewBunSQLiteDB(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
