// Package testsupport holds shared fixtures for tests that need a real
// database.
package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

// NewBunSQLiteDB opens an in-memory sqlite database wrapped for bun. Each
// call gets its own shared-cache namespace so concurrently running tests
// never see each other's tables.
func NewBunSQLiteDB() (*bun.DB, error) {
	dsn := fmt.Sprintf("file:noteflow-test-%d?mode=memory&cache=shared", dbSeq.Add(1))
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
