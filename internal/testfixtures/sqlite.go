package testfixtures

import (
	"path/filepath"
	"testing"

	"carereminder/internal/infrastructure/database/sqlite"
	"carereminder/internal/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLite opens a migrated database in a per-test temporary directory.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.Options{Path: filepath.Join(t.TempDir(), "test.db")}, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.CloseDB(db) })
	return db
}
