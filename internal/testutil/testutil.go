package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/monocle-dev/taskboard/db"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// OpenInMemoryDB opens a private in-memory SQLite database with the full
// schema migrated. It is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	schema := db.DefaultSchema()

	conn, err := db.Connect("sqlite", dsn, schema)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite only supports one writer
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(conn, schema); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return conn
}
