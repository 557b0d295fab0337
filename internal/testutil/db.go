package testutil

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nurpe/freightmarket/internal/db"
)

// NewDB opens a migrated sqlite database in a per-test temp dir and closes it on cleanup.
//
// The pool is limited to one connection, so concurrent callers are serialized the way a
// single writer would be; row locks are no-ops on sqlite.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "freightmarket.db")
	database, err := db.Open(sqlite.Open(path+"?_busy_timeout=5000"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Migrate(database); err != nil {
		_ = db.Close(database)
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close(database)
	})
	return database
}
