package interfaces

import (
	"context"

	"github.com/bobmcallan/finote/internal/models"
)

// SeriesService loads raw series and resolves them for charts and cards.
type SeriesService interface {
	// LoadRaw returns the raw series, falling back to the last stored snapshot
	// and then to an empty series when the source fails.
	LoadRaw(ctx context.Context, assetType string, metric models.Metric) (models.RawTimeSeries, error)

	// Resolve produces labels and values for a chart request.
	Resolve(ctx context.Context, req models.SeriesRequest) (*models.SeriesResponse, error)

	// Card builds the compact total-assets card for a daily or weekly interval.
	Card(ctx context.Context, assetType string, interval models.Interval) (*models.CardPayload, error)
}

// ChartBuildFunc produces the contents of a chart handle. It may be slow; the
// registry only installs its result if no newer build was started meanwhile.
type ChartBuildFunc func(ctx context.Context) (*models.ChartHandle, error)

// ChartRegistry owns the rendered chart per chart id.
type ChartRegistry interface {
	// Replace runs build and installs the result under id, destroying the previous handle.
	Replace(ctx context.Context, id string, build ChartBuildFunc) (*models.ChartHandle, error)
	Get(id string) (*models.ChartHandle, bool)
	// Destroy removes the handle for id and reports whether one existed.
	Destroy(id string) bool
	List() []string
}
