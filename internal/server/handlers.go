package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/chart"
	"github.com/bobmcallan/finote/internal/services/period"
	"github.com/bobmcallan/finote/internal/services/series"
)

// seriesRequest reads period, range, asset_type and metric from the query.
// An unknown period falls back to daily; a bad range to the configured default.
func (s *Server) seriesRequest(r *http.Request) models.SeriesRequest {
	q := r.URL.Query()

	rawPeriod := q.Get("period")
	if rawPeriod == "" {
		rawPeriod = s.app.Config.Series.DefaultPeriod
	}
	code, err := period.ParsePeriodCode(rawPeriod)
	if err != nil {
		s.logger.Debug().Str("period", rawPeriod).Msg("Unknown period, using daily")
	}

	return models.SeriesRequest{
		AssetType: strings.TrimSpace(q.Get("asset_type")),
		Metric:    models.ParseMetric(q.Get("metric")),
		Period:    code,
		RangeDays: QueryInt(r, "range", s.app.Config.Series.DefaultRange),
	}
}

// handleSeries handles GET /api/series.
// With placeholder=true the synthetic series is returned without touching the source.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	req := s.seriesRequest(r)

	if QueryBool(r, "placeholder") {
		key := series.SnapshotKey(r.Context(), req.AssetType)
		resolved := s.app.Mock.Placeholder(key, req.Period, req.RangeDays)
		WriteJSON(w, http.StatusOK, &models.SeriesResponse{
			Period:     req.Period,
			RangeDays:  req.RangeDays,
			DataPoints: resolved.Len(),
			AssetType:  req.AssetType,
			Metric:     req.Metric,
			Labels:     resolved.Labels,
			Values:     resolved.Values,
		})
		return
	}

	resp, err := s.app.SeriesService.Resolve(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Str("period", string(req.Period)).Msg("Series resolve failed")
		WriteError(w, http.StatusInternalServerError, "Failed to resolve series")
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleCardTotal handles GET /api/cards/total.
func (s *Server) handleCardTotal(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	interval := models.Interval(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("interval"))))
	assetType := strings.TrimSpace(r.URL.Query().Get("asset_type"))

	card, err := s.app.SeriesService.Card(r.Context(), assetType, interval)
	if err != nil {
		s.logger.Error().Err(err).Msg("Card build failed")
		WriteError(w, http.StatusInternalServerError, "Failed to build card")
		return
	}
	WriteJSON(w, http.StatusOK, card)
}

// handleChartList handles GET /api/charts.
func (s *Server) handleChartList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"charts": s.app.Charts.List()})
}

// handleChartRender handles GET /api/charts/{id}: rebuilds the chart from the
// query and serves the PNG, or the handle metadata with format=json.
func (s *Server) handleChartRender(w http.ResponseWriter, r *http.Request, id string) {
	req := s.seriesRequest(r)
	title := r.URL.Query().Get("title")

	handle, err := s.app.Charts.Replace(r.Context(), id, chart.SeriesBuild(s.app.SeriesService, req, title))
	if errors.Is(err, chart.ErrSuperseded) {
		// a newer request for this id owns the chart; serve whatever is installed
		current, ok := s.app.Charts.Get(id)
		if !ok {
			WriteErrorWithCode(w, http.StatusConflict, "Chart was replaced or destroyed", "superseded")
			return
		}
		handle = current
	} else if err != nil {
		s.logger.Warn().Err(err).Str("chart_id", id).Msg("Chart build failed")
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Chart build failed: %v", err))
		return
	}

	if r.URL.Query().Get("format") == "json" {
		WriteJSON(w, http.StatusOK, handle)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Chart-Handle", handle.ID)
	w.Header().Set("X-Chart-Sequence", strconv.FormatUint(handle.Sequence, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(handle.PNG)
}

// handleChartDestroy handles DELETE /api/charts/{id}.
func (s *Server) handleChartDestroy(w http.ResponseWriter, r *http.Request, id string) {
	if !s.app.Charts.Destroy(id) {
		WriteError(w, http.StatusNotFound, "Chart not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSnapshots handles GET /api/snapshots (list the caller's stored keys) and
// DELETE /api/snapshots?asset_type=&metric= (drop the caller's snapshot; idempotent).
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	ctx := r.Context()

	if r.Method == http.MethodGet {
		keys, err := s.app.Store.ListKeys(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to list snapshots")
			WriteError(w, http.StatusInternalServerError, "Failed to list snapshots")
			return
		}
		prefix := common.ResolveUserID(ctx) + ":"
		own := make([]string, 0, len(keys))
		for _, k := range keys {
			if strings.HasPrefix(k, prefix) {
				own = append(own, k)
			}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"snapshots": own})
		return
	}

	key := series.SnapshotKey(ctx, strings.TrimSpace(r.URL.Query().Get("asset_type")))
	metric := models.ParseMetric(r.URL.Query().Get("metric"))
	if err := s.app.Store.DeleteSeries(ctx, key, metric); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete snapshot")
		WriteError(w, http.StatusInternalServerError, "Failed to delete snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
