// Package sqlite stores series snapshots in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
)

const (
	driverName    = "sqlite"
	snapshotTable = "series_snapshot"
	defaultPath   = "data/finote.db"
)

// Store implements SeriesStore on SQLite.
type Store struct {
	db     *sql.DB
	logger *common.Logger
}

var _ interfaces.SeriesStore = &Store{} // Compile-time check

// NewStore opens (creating if needed) the database at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if filepath.Ext(path) == "" {
		// a directory from the file backend config
		path = filepath.Join(path, "finote.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at %q: %w", path, err)
	}
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT NOT NULL,
			metric TEXT NOT NULL,
			source TEXT NOT NULL,
			points BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (cache_key, metric)
		);
	`, snapshotTable)
	if _, err := db.Exec(query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", snapshotTable, err)
	}

	logger.Debug().Str("path", path).Msg("SQLite series store opened")
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) GetSeries(ctx context.Context, key string, metric models.Metric) (*models.SeriesSnapshot, error) {
	query := fmt.Sprintf(`SELECT source, points, fetched_at FROM %s WHERE cache_key = ? AND metric = ?`, snapshotTable)

	var (
		source    string
		points    []byte
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, key, string(metric)).Scan(&source, &points, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("series %s/%s: %w", key, metric, interfaces.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}

	snap := &models.SeriesSnapshot{
		Key:       key,
		Metric:    metric,
		Source:    source,
		FetchedAt: time.Unix(0, fetchedAt).UTC(),
	}
	if err := json.Unmarshal(points, &snap.Points); err != nil {
		return nil, fmt.Errorf("failed to decode points for %s/%s: %w", key, metric, err)
	}
	return snap, nil
}

func (s *Store) SaveSeries(ctx context.Context, snap *models.SeriesSnapshot) error {
	points, err := json.Marshal(snap.Points)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (cache_key, metric, source, points, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key, metric) DO UPDATE SET
			source = excluded.source,
			points = excluded.points,
			fetched_at = excluded.fetched_at
	`, snapshotTable)

	if _, err := s.db.ExecContext(ctx, query, snap.Key, string(snap.Metric), snap.Source, points, snap.FetchedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to save series %s/%s: %w", snap.Key, snap.Metric, err)
	}
	return nil
}

func (s *Store) DeleteSeries(ctx context.Context, key string, metric models.Metric) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = ? AND metric = ?`, snapshotTable)
	if _, err := s.db.ExecContext(ctx, query, key, string(metric)); err != nil {
		return fmt.Errorf("failed to delete series %s/%s: %w", key, metric, err)
	}
	return nil
}

func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT cache_key, metric FROM %s ORDER BY cache_key, metric`, snapshotTable)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key, metric string
		if err := rows.Scan(&key, &metric); err != nil {
			return nil, fmt.Errorf("failed to scan series key: %w", err)
		}
		keys = append(keys, key+"/"+metric)
	}
	return keys, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
