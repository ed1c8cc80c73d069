package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/tradefund/pkg/db"
)

// NewDB opens a private in-memory sqlite database and migrates the given models.
// The pool is pinned to one connection so every statement sees the same memory database.
func NewDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	cfg := pkgdb.GormConfig()
	cfg.PrepareStmt = false
	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
