// Package dbtest opens isolated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ZhaoZeLuWei/HelpMe/internal/database"
)

var counter int64

// Open returns a migrated database that lives until the test ends. It uses a
// single connection, so code running inside a transaction must only use tx.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:helpme_test_%d?mode=memory&cache=shared", atomic.AddInt64(&counter, 1))
	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	dbConn, err := gorm.Open(sqlite.Open(name), cfg)
	require.NoError(t, err)

	sqlDB, err := dbConn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(dbConn))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return dbConn
}
