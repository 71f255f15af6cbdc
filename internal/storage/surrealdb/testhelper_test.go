package surrealdb

import (
	"testing"

	surreal "github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/finote/internal/common"
	tcommon "github.com/bobmcallan/finote/tests/common"
)

func testDB(t *testing.T) *surreal.DB {
	t.Helper()
	return tcommon.ConnectSurrealDB(t)
}

// testLogger returns a silent logger for tests.
func testLogger() *common.Logger {
	return common.NewSilentLogger()
}
