// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/db"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func NewStore(t testing.TB) *db.Store {
	t.Helper()
	return db.NewStore(New(t), zap.NewNop().Sugar())
}
