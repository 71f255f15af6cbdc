package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finote/internal/app"
	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// newTestServer builds a server over the mock source and a file store in a temp dir.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Series.Source = common.SourceMock
	config.Series.Timezone = "UTC"
	config.Storage.Backend = common.StorageFile
	config.Storage.Path = t.TempDir()

	a, err := app.NewAppWithConfig(config, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return NewServer(a)
}

func doRequest(t *testing.T, srv *Server, method, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeSeries(t *testing.T, rr *httptest.ResponseRecorder) models.SeriesResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp models.SeriesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func withUser(id string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("X-Finote-User-ID", id) }
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = doRequest(t, srv, http.MethodGet, "/api/version")
	assert.Equal(t, http.StatusOK, rr.Code)
	var info common.VersionInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, common.GetVersion(), info.Version)

	rr = doRequest(t, srv, http.MethodPost, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSeries_Weekly(t *testing.T) {
	srv := newTestServer(t)

	resp := decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1W&range=28&asset_type=stock"))
	assert.Equal(t, models.PeriodWeekly, resp.Period)
	assert.Equal(t, 28, resp.RangeDays)
	assert.Equal(t, 4, resp.DataPoints)
	assert.Equal(t, "stock", resp.AssetType)
	assert.Len(t, resp.Labels, 4)
	assert.Len(t, resp.Values, 4)
}

func TestSeries_Defaults(t *testing.T) {
	srv := newTestServer(t)

	resp := decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=3M&range=abc"))
	assert.Equal(t, models.PeriodDaily, resp.Period)
	assert.Equal(t, 30, resp.RangeDays)
	assert.Equal(t, 30, resp.DataPoints)
	assert.Equal(t, models.MetricMarketValue, resp.Metric)
	assert.Len(t, resp.Values, 30)
}

func TestSeries_ClampsLongRanges(t *testing.T) {
	srv := newTestServer(t)

	resp := decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1Y&range=10000"))
	assert.Equal(t, 12, resp.DataPoints)
	assert.Len(t, resp.Labels, 12)
	assert.Len(t, resp.Values, 12)
}

func TestSeries_Placeholder(t *testing.T) {
	srv := newTestServer(t)

	first := decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1M&range=90&placeholder=true"))
	second := decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1M&range=90&placeholder=true"))

	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3"}, first.Labels)
	assert.Len(t, first.Values, 3)
	assert.Equal(t, first.Values, second.Values)

	// placeholders are not persisted
	rr := doRequest(t, srv, http.MethodGet, "/api/snapshots")
	assert.JSONEq(t, `{"snapshots":[]}`, rr.Body.String())
}

func TestCardTotal(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/cards/total?interval=DAILY")
	require.Equal(t, http.StatusOK, rr.Code)

	var card models.CardPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, models.IntervalDaily, card.Interval)
	require.Len(t, card.Series, 2)
	assert.Equal(t, time.Now().UTC().Format("Mon"), card.Series[1].Label)
	assert.Equal(t, card.Series[1].Value, card.TotalValue)

	rr = doRequest(t, srv, http.MethodGet, "/api/cards/total")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &card))
	assert.Equal(t, models.IntervalWeekly, card.Interval)
	assert.Len(t, card.Series, 8)
}

func TestCharts_RenderListDestroy(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/charts/total-assets?period=1W&range=28")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic))
	assert.Equal(t, "1", rr.Header().Get("X-Chart-Sequence"))

	rr = doRequest(t, srv, http.MethodGet, "/api/charts")
	assert.JSONEq(t, `{"charts":["total-assets"]}`, rr.Body.String())

	rr = doRequest(t, srv, http.MethodGet, "/api/charts/total-assets?period=1D&range=7&format=json")
	require.Equal(t, http.StatusOK, rr.Code)
	var handle models.ChartHandle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &handle))
	assert.Equal(t, "total-assets", handle.ChartID)
	assert.Equal(t, uint64(2), handle.Sequence)
	assert.Equal(t, models.PeriodDaily, handle.Request.Period)
	assert.Len(t, handle.Series.Values, 7)

	rr = doRequest(t, srv, http.MethodDelete, "/api/charts/total-assets")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doRequest(t, srv, http.MethodDelete, "/api/charts/total-assets")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/api/charts")
	assert.JSONEq(t, `{"charts":[]}`, rr.Body.String())
}

func TestCharts_Errors(t *testing.T) {
	srv := newTestServer(t)

	rr := doRequest(t, srv, http.MethodGet, "/api/charts/bad.id")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, srv, http.MethodPost, "/api/charts/tiny")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCharts_SinglePointRenders(t *testing.T) {
	srv := newTestServer(t)

	// default range is 30 days: 1Y and 1M resolve to a single point
	for _, target := range []string{
		"/api/charts/yearly?period=1Y",
		"/api/charts/monthly?period=1M",
		"/api/charts/weekly?period=1W&range=7",
		"/api/charts/tiny?period=1D&range=1",
	} {
		rr := doRequest(t, srv, http.MethodGet, target)
		require.Equal(t, http.StatusOK, rr.Code, target)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"), target)
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic), target)
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/charts/yearly?period=1Y&format=json")
	require.Equal(t, http.StatusOK, rr.Code)
	var handle models.ChartHandle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &handle))
	assert.Len(t, handle.Series.Values, 1)
	assert.Len(t, handle.Series.Labels, 1)
}

func TestSnapshots_ScopedByUser(t *testing.T) {
	srv := newTestServer(t)

	decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1D&range=7"))
	decodeSeries(t, doRequest(t, srv, http.MethodGet, "/api/series?period=1D&range=7&asset_type=stock&metric=return_rate", withUser("bob")))

	rr := doRequest(t, srv, http.MethodGet, "/api/snapshots")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"snapshots":["default:all/market_value"]}`, rr.Body.String())

	rr = doRequest(t, srv, http.MethodGet, "/api/snapshots", withUser("bob"))
	assert.JSONEq(t, `{"snapshots":["bob:stock/return_rate"]}`, rr.Body.String())

	rr = doRequest(t, srv, http.MethodDelete, "/api/snapshots?asset_type=stock&metric=return_rate", withUser("bob"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doRequest(t, srv, http.MethodGet, "/api/snapshots", withUser("bob"))
	assert.JSONEq(t, `{"snapshots":[]}`, rr.Body.String())

	rr = doRequest(t, srv, http.MethodGet, "/api/snapshots")
	assert.JSONEq(t, `{"snapshots":["default:all/market_value"]}`, rr.Body.String())
}

func TestShutdown(t *testing.T) {
	srv := newTestServer(t)
	ch := make(chan struct{}, 1)
	srv.SetShutdownChannel(ch)

	rr := doRequest(t, srv, http.MethodPost, "/api/shutdown")
	assert.Equal(t, http.StatusOK, rr.Code)

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown was not signalled")
	}

	srv.app.Config.Environment = "production"
	rr = doRequest(t, srv, http.MethodPost, "/api/shutdown")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMCPEndpoint_Initialize(t *testing.T) {
	srv := newTestServer(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"name":"finote"`)
}
