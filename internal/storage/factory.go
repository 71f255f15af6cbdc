// Package storage provides series snapshot persistence with pluggable backends.
package storage

import (
	"fmt"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/storage/sqlite"
	"github.com/bobmcallan/finote/internal/storage/surrealdb"
)

// NewSeriesStore creates a snapshot store based on the configuration.
// Supported backends: "file" (default), "sqlite", "surrealdb".
func NewSeriesStore(logger *common.Logger, config *common.Config) (interfaces.SeriesStore, error) {
	backend := config.Storage.Backend
	if backend == "" {
		backend = common.StorageFile
	}

	switch backend {
	case common.StorageFile:
		return NewFileStore(logger, config.Storage.Path)

	case common.StorageSQLite:
		return sqlite.NewStore(logger, config.Storage.Path)

	case common.StorageSurrealDB:
		return surrealdb.NewSeriesStore(logger, config)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, sqlite, surrealdb)", backend)
	}
}
