package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/facekiosk/attendancebackend/database"
)

// setupGormDB opens a throwaway ledger database under t.TempDir with
// the full production schema migrated.
func setupGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to open test ledger database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test ledger database: %v", err)
	}
	return db
}

// setupLegacyDB opens a throwaway legacy attendance database with the
// historical schema created.
func setupLegacyDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "legacy.db"))
	if err != nil {
		t.Fatalf("failed to open test legacy database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
