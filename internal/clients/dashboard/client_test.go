package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestGetTimeSeries_DecodesMixedNumberFormats(t *testing.T) {
	mockResp := `{
		"timeseries_data": [
			{"date": "2026-10-18", "market_value_krw": "21500000.50", "market_value": "15000", "cumulative_return_rate": "3.25"},
			{"date": "2026-10-17", "market_value": 21000000, "cumulative_return_rate": 2.5},
			{"date": "2026-10-19T09:00:00+09:00", "market_value_krw": null, "market_value": "22000000", "cumulative_return_rate": null},
			{"date": "", "market_value": "1"},
			{"date": "not-a-date", "market_value": "2"},
			{"date": "2026-10-16", "market_value": "N/A", "cumulative_return_rate": ""}
		]
	}`

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("asset_type")
		assert.Equal(t, "/dashboard/api/portfolio/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	ts, err := client.GetTimeSeries(context.Background(), "stock")
	require.NoError(t, err)

	assert.Equal(t, "stock", gotQuery)
	assert.Equal(t, "stock", ts.AssetType)
	require.Len(t, ts.MarketValue, 4)
	require.Len(t, ts.ReturnRate, 4)

	assert.Equal(t, day("2026-10-16"), ts.MarketValue[0].Date)
	assert.Equal(t, 0.0, ts.MarketValue[0].Value)
	assert.Equal(t, 21000000.0, ts.MarketValue[1].Value)
	assert.Equal(t, 21500000.5, ts.MarketValue[2].Value, "KRW value preferred")
	assert.Equal(t, day("2026-10-19"), ts.MarketValue[3].Date)
	assert.Equal(t, 22000000.0, ts.MarketValue[3].Value, "falls back to market_value")

	assert.Equal(t, []float64{0, 2.5, 3.25, 0}, ts.ReturnRate.Values())
}

func TestGetTimeSeries_DuplicateDatesKeepLast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeseries_data": [
			{"date": "2026-10-19", "market_value": "1"},
			{"date": "2026-10-19", "market_value": "2"}
		]}`))
	}))
	defer srv.Close()

	ts, err := NewClient(WithBaseURL(srv.URL)).GetTimeSeries(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, ts.MarketValue, 1)
	assert.Equal(t, 2.0, ts.MarketValue[0].Value)
}

func TestGetTimeSeries_AllAssetsOmitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"timeseries_data": []}`))
	}))
	defer srv.Close()

	ts, err := NewClient(WithBaseURL(srv.URL + "/")).GetTimeSeries(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ts.MarketValue)
}

func TestGetTimeSeries_ForwardsSessionCookie(t *testing.T) {
	var cookies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(SessionCookieName); err == nil {
			cookies = append(cookies, c.Value)
		}
		w.Write([]byte(`{"timeseries_data": []}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithSessionCookie("configured"))

	_, err := client.GetTimeSeries(context.Background(), "")
	require.NoError(t, err)

	ctx := common.WithUserContext(context.Background(), &common.UserContext{UserID: "u1", SessionID: "from-request"})
	_, err = client.GetTimeSeries(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"configured", "from-request"}, cookies)
}

func TestGetTimeSeries_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "login required", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GetTimeSeries(context.Background(), "stock")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, portfolioPath, apiErr.Endpoint)
	assert.Contains(t, apiErr.Error(), "login required")
}

func TestGetTimeSeries_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).GetTimeSeries(context.Background(), "")
	assert.ErrorContains(t, err, "decode")
}

func TestLoadSeries_SelectsMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"timeseries_data": [{"date": "2026-10-19", "market_value": 100, "cumulative_return_rate": "-4.5"}]}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(100), WithTimeout(time.Second))
	assert.Equal(t, "backend", client.Name())

	mv, err := client.LoadSeries(context.Background(), "", models.MetricMarketValue)
	require.NoError(t, err)
	assert.Equal(t, []float64{100}, mv.Values())

	rr, err := client.LoadSeries(context.Background(), "", models.MetricReturnRate)
	require.NoError(t, err)
	assert.Equal(t, []float64{-4.5}, rr.Values())
}
