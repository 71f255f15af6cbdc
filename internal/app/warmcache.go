package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/series"
)

const warmCacheTimeout = 2 * time.Minute

// StartWarmCache loads the configured asset types in the background so their
// snapshots exist before the first dashboard request.
func (a *App) StartWarmCache() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmCacheTimeout)
		defer cancel()
		warmCache(ctx, a.SeriesService, a.Store, a.Config.Series.WarmAssetTypes, a.Logger)
	}()
}

// warmCache loads the market value series for each asset type whose stored
// snapshot is missing or stale. It returns how many series were loaded.
func warmCache(ctx context.Context, svc interfaces.SeriesService, store interfaces.SeriesStore, assetTypes []string, logger *common.Logger) int {
	if os.Getenv("FINOTE_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FINOTE_WARM_CACHE=off")
		return 0
	}

	start := time.Now()
	loaded := 0
	for _, assetType := range assetTypes {
		assetType = strings.TrimSpace(assetType)
		if strings.EqualFold(assetType, "all") {
			assetType = ""
		}
		key := series.SnapshotKey(ctx, assetType)

		snap, err := store.GetSeries(ctx, key, models.MetricMarketValue)
		if err == nil && common.IsFresh(snap.FetchedAt, common.FreshnessSnapshot) {
			logger.Debug().Str("key", key).Msg("Warm cache: snapshot already fresh, skipping")
			continue
		}
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("Warm cache: snapshot read failed")
		}

		if _, err := svc.LoadRaw(ctx, assetType, models.MetricMarketValue); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Warm cache: load failed")
			return loaded
		}
		loaded++
	}

	logger.Info().
		Int("loaded", loaded).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
	return loaded
}
