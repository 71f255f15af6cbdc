package interfaces

import (
	"context"

	"github.com/bobmcallan/finote/internal/models"
)

// DashboardClient reads portfolio history from the dashboard backend.
type DashboardClient interface {
	// GetTimeSeries fetches the history for assetType ("" for all assets).
	GetTimeSeries(ctx context.Context, assetType string) (*models.DashboardTimeSeries, error)
}

// SeriesSource supplies raw daily series. The backend client and the
// synthetic generator both implement it.
type SeriesSource interface {
	// Name identifies the source in snapshots and logs.
	Name() string

	// LoadSeries returns the raw series for key (an asset type) and metric, oldest first.
	LoadSeries(ctx context.Context, key string, metric models.Metric) (models.RawTimeSeries, error)
}
