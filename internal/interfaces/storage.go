// Package interfaces defines service contracts for Finote
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/finote/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// SeriesStore persists the last good raw series per asset type and metric.
type SeriesStore interface {
	// GetSeries returns the stored snapshot or ErrNotFound.
	GetSeries(ctx context.Context, key string, metric models.Metric) (*models.SeriesSnapshot, error)

	// SaveSeries inserts or replaces the snapshot for its key and metric.
	SaveSeries(ctx context.Context, snapshot *models.SeriesSnapshot) error

	// DeleteSeries removes a snapshot. Deleting a missing snapshot is not an error.
	DeleteSeries(ctx context.Context, key string, metric models.Metric) error

	// ListKeys returns "<key>/<metric>" for every stored snapshot, sorted.
	ListKeys(ctx context.Context) ([]string, error)

	Close() error
}
