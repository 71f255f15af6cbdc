// Package surrealdb stores series snapshots in SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
)

const snapshotTable = "series_snapshot"

// SeriesStore implements interfaces.SeriesStore using SurrealDB.
type SeriesStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// snapshotRecord is the SurrealDB record shape for the series_snapshot table.
type snapshotRecord struct {
	Key       string                   `json:"key"`
	Metric    string                   `json:"metric"`
	Source    string                   `json:"source"`
	Points    []models.TimeSeriesPoint `json:"points"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// NewSeriesStore connects to SurrealDB, signs in and selects the configured
// namespace and database.
func NewSeriesStore(logger *common.Logger, config *common.Config) (*SeriesStore, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewSeriesStoreWithDB(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB series store initialized")

	return s, nil
}

// NewSeriesStoreWithDB wraps an already connected database and defines the table.
func NewSeriesStoreWithDB(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*SeriesStore, error) {
	// SurrealDB v3 errors on querying non-existent tables
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", snapshotTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", snapshotTable, err)
	}
	return &SeriesStore{db: db, logger: logger}, nil
}

// recordID builds a record ID from key and metric.
// Sanitizes separators to underscores for safe record IDs.
func recordID(key string, metric models.Metric) surrealmodels.RecordID {
	id := strings.NewReplacer(".", "_", "/", "_", ":", "_").Replace(key + "__" + string(metric))
	return surrealmodels.NewRecordID(snapshotTable, id)
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func (s *SeriesStore) GetSeries(ctx context.Context, key string, metric models.Metric) (*models.SeriesSnapshot, error) {
	record, err := surrealdb.Select[snapshotRecord](ctx, s.db, recordID(key, metric))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("series %s/%s: %w", key, metric, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to select series: %w", err)
	}
	if record == nil || record.Key == "" {
		return nil, fmt.Errorf("series %s/%s: %w", key, metric, interfaces.ErrNotFound)
	}
	return &models.SeriesSnapshot{
		Key:       record.Key,
		Metric:    models.Metric(record.Metric),
		Source:    record.Source,
		Points:    record.Points,
		FetchedAt: record.FetchedAt,
	}, nil
}

func (s *SeriesStore) SaveSeries(ctx context.Context, snap *models.SeriesSnapshot) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{
		"rid": recordID(snap.Key, snap.Metric),
		"data": snapshotRecord{
			Key:       snap.Key,
			Metric:    string(snap.Metric),
			Source:    snap.Source,
			Points:    snap.Points,
			FetchedAt: snap.FetchedAt,
		},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]snapshotRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Int("attempt", attempt).Str("key", snap.Key).Msg("Series upsert failed")
	}
	return fmt.Errorf("failed to save series after retries: %w", lastErr)
}

func (s *SeriesStore) DeleteSeries(ctx context.Context, key string, metric models.Metric) error {
	if _, err := surrealdb.Delete[snapshotRecord](ctx, s.db, recordID(key, metric)); err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete series %s/%s: %w", key, metric, err)
	}
	return nil
}

func (s *SeriesStore) ListKeys(ctx context.Context) ([]string, error) {
	sql := fmt.Sprintf("SELECT key, metric FROM %s ORDER BY key, metric", snapshotTable)

	type keyResult struct {
		Key    string `json:"key"`
		Metric string `json:"metric"`
	}

	results, err := surrealdb.Query[[]keyResult](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	keys := []string{}
	if results != nil && len(*results) > 0 {
		for _, res := range (*results)[0].Result {
			keys = append(keys, res.Key+"/"+res.Metric)
		}
	}
	return keys, nil
}

func (s *SeriesStore) Close() error {
	return s.db.Close(context.Background())
}

// Compile-time check
var _ interfaces.SeriesStore = (*SeriesStore)(nil)
