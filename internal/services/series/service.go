// Package series loads raw portfolio series and resolves them into chart data
package series

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/period"
)

// allAssets keys snapshots for requests without an asset type.
const allAssets = "all"

// Service implements SeriesService on top of a SeriesSource, keeping the last
// good series in a SeriesStore for when the source is unavailable.
type Service struct {
	source       interfaces.SeriesSource
	store        interfaces.SeriesStore
	logger       *common.Logger
	loc          *time.Location
	cacheTTL     time.Duration
	defaultRange int
	now          func() time.Time // injectable clock for testing
}

// NewService creates a new series service.
// store may be nil: snapshots are then neither written nor used as fallback.
func NewService(source interfaces.SeriesSource, store interfaces.SeriesStore, cfg common.SeriesConfig, logger *common.Logger) *Service {
	defaultRange := cfg.DefaultRange
	if defaultRange <= 0 {
		defaultRange = 30
	}
	return &Service{
		source:       source,
		store:        store,
		logger:       logger,
		loc:          cfg.Location(),
		cacheTTL:     cfg.GetCacheTTL(),
		defaultRange: defaultRange,
		now:          time.Now,
	}
}

// AsOf returns the reference "today" in the configured timezone.
func (s *Service) AsOf() time.Time {
	return s.now().In(s.loc)
}

// DefaultRange is the range used when a request does not carry a valid one.
func (s *Service) DefaultRange() int {
	return s.defaultRange
}

// SnapshotKey scopes stored series by caller and asset type.
func SnapshotKey(ctx context.Context, assetType string) string {
	if assetType == "" {
		assetType = allAssets
	}
	return common.ResolveUserID(ctx) + ":" + assetType
}

// LoadRaw implements SeriesService.
// A source failure is not returned: the stored snapshot, or an empty series,
// is served instead and the failure is logged.
func (s *Service) LoadRaw(ctx context.Context, assetType string, metric models.Metric) (models.RawTimeSeries, error) {
	key := SnapshotKey(ctx, assetType)

	if s.store != nil && s.cacheTTL > 0 {
		if snap, err := s.store.GetSeries(ctx, key, metric); err == nil &&
			snap.Source == s.source.Name() && common.IsFreshAt(snap.FetchedAt, s.now(), s.cacheTTL) {
			s.logger.Debug().Str("key", key).Str("metric", string(metric)).Msg("Serving cached series")
			return snap.Points, nil
		}
	}

	raw, err := s.source.LoadSeries(ctx, assetType, metric)
	if err == nil {
		s.saveSnapshot(ctx, key, metric, raw)
		return raw, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	event := s.logger.Warn()
	var apiErr interface{ Unauthorized() bool }
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		event = s.logger.Error()
	}
	event.Err(err).Str("source", s.source.Name()).Str("key", key).Str("metric", string(metric)).
		Msg("Series source failed, falling back to stored snapshot")

	return s.fallback(ctx, key, metric), nil
}

func (s *Service) saveSnapshot(ctx context.Context, key string, metric models.Metric, raw models.RawTimeSeries) {
	if s.store == nil {
		return
	}
	snap := &models.SeriesSnapshot{
		Key:       key,
		Metric:    metric,
		Source:    s.source.Name(),
		Points:    raw,
		FetchedAt: s.now(),
	}
	if err := s.store.SaveSeries(ctx, snap); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to save series snapshot")
	}
}

func (s *Service) fallback(ctx context.Context, key string, metric models.Metric) models.RawTimeSeries {
	if s.store == nil {
		return models.RawTimeSeries{}
	}
	snap, err := s.store.GetSeries(ctx, key, metric)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read series snapshot")
		}
		return models.RawTimeSeries{}
	}
	if !common.IsFreshAt(snap.FetchedAt, s.now(), common.FreshnessSnapshot) {
		s.logger.Info().Str("key", key).Time("fetched_at", snap.FetchedAt).Msg("Serving stale series snapshot")
	}
	return snap.Points
}

// Resolve implements SeriesService.
func (s *Service) Resolve(ctx context.Context, req models.SeriesRequest) (*models.SeriesResponse, error) {
	code := period.Normalize(req.Period)
	if code != req.Period {
		s.logger.Debug().Str("period", string(req.Period)).Msg("Unknown period, using daily")
	}
	rangeDays := req.RangeDays
	if rangeDays <= 0 {
		rangeDays = s.defaultRange
	}
	metric := models.ParseMetric(string(req.Metric))

	raw, err := s.LoadRaw(ctx, req.AssetType, metric)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	resolved := period.Resolve(code, rangeDays, raw, s.AsOf())
	return &models.SeriesResponse{
		Period:     code,
		RangeDays:  rangeDays,
		DataPoints: resolved.Len(),
		AssetType:  req.AssetType,
		Metric:     metric,
		Labels:     resolved.Labels,
		Values:     resolved.Values,
	}, nil
}

// Card implements SeriesService.
func (s *Service) Card(ctx context.Context, assetType string, interval models.Interval) (*models.CardPayload, error) {
	if interval != models.IntervalDaily {
		interval = models.IntervalWeekly
	}

	raw, err := s.LoadRaw(ctx, assetType, models.MetricMarketValue)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	return BuildCard(raw, interval, s.AsOf()), nil
}

// BuildCard computes the compact card from a raw series. The interval starts one
// day (daily) or seven days (weekly) before asOf; the change is measured against
// the value recorded on that start day.
func BuildCard(raw models.RawTimeSeries, interval models.Interval, asOf time.Time) *models.CardPayload {
	days := 7
	if interval == models.IntervalDaily {
		days = 1
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -days)

	card := &models.CardPayload{
		Interval: interval,
		Series:   []models.CardPoint{},
	}
	if last, ok := raw.Last(); ok {
		card.TotalValue = last.Value
	}

	var startValue float64
	for _, p := range raw {
		d := time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, time.UTC)
		if d.Equal(start) {
			startValue = p.Value
		}
		if d.Before(start) || d.After(today) {
			continue
		}
		card.Series = append(card.Series, models.CardPoint{Label: d.Format("Mon"), Value: p.Value})
	}

	if startValue > 0 {
		card.WoWChangePct = math.Round((card.TotalValue-startValue)/startValue*100*100) / 100
	}
	return card
}
