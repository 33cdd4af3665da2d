// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/medicart/internal/db"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "medicart.db")
	gdb, err := db.Open(context.Background(), url, "")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return gdb
}
