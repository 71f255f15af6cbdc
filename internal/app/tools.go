package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/models"
	"github.com/bobmcallan/finote/internal/services/period"
)

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Finote server version and status. Use this to verify connectivity."),
	)
}

func createResolveSeriesTool() mcp.Tool {
	return mcp.NewTool("resolve_series",
		mcp.WithDescription("Resolve the portfolio chart series for a period and range: one label and one value per chart point."),
		mcp.WithString("period",
			mcp.Description("Granularity: 1D, 1W, 1M or 1Y (also daily, weekly, monthly, yearly). Unknown values fall back to 1D."),
		),
		mcp.WithNumber("range",
			mcp.Description("Range in days (default from server config). Capped at 365 daily, 52 weekly, 12 monthly or yearly points."),
		),
		mcp.WithString("asset_type",
			mcp.Description("Asset type filter, e.g. 'stock' or 'real_estate'. Empty means all assets."),
		),
		mcp.WithString("metric",
			mcp.Description("market_value (default) or return_rate"),
		),
	)
}

func createCardSummaryTool() mcp.Tool {
	return mcp.NewTool("card_summary",
		mcp.WithDescription("Total assets card: latest value, percentage change over the interval and the values within it."),
		mcp.WithString("interval",
			mcp.Description("daily or weekly (default weekly)"),
		),
		mcp.WithString("asset_type",
			mcp.Description("Asset type filter. Empty means all assets."),
		),
	)
}

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Finote Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleResolveSeries implements the resolve_series tool
func handleResolveSeries(svc interfaces.SeriesService, cfg common.SeriesConfig, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetString("period", cfg.DefaultPeriod)
		code, err := period.ParsePeriodCode(raw)
		if err != nil {
			logger.Debug().Err(err).Msg("resolve_series: period fallback")
		}

		req := models.SeriesRequest{
			AssetType: strings.TrimSpace(request.GetString("asset_type", "")),
			Metric:    models.ParseMetric(request.GetString("metric", "")),
			Period:    code,
			RangeDays: request.GetInt("range", cfg.DefaultRange),
		}

		resp, err := svc.Resolve(ctx, req)
		if err != nil {
			logger.Error().Err(err).Str("period", string(code)).Msg("resolve_series failed")
			return errorResult(fmt.Sprintf("Resolve error: %v", err)), nil
		}
		return textResult(formatSeries(resp)), nil
	}
}

// handleCardSummary implements the card_summary tool
func handleCardSummary(svc interfaces.SeriesService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		interval := models.Interval(strings.ToLower(request.GetString("interval", string(models.IntervalWeekly))))
		assetType := strings.TrimSpace(request.GetString("asset_type", ""))

		card, err := svc.Card(ctx, assetType, interval)
		if err != nil {
			logger.Error().Err(err).Msg("card_summary failed")
			return errorResult(fmt.Sprintf("Card error: %v", err)), nil
		}
		return textResult(formatCard(card)), nil
	}
}

func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatSeries(resp *models.SeriesResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Series %s over %d days\n\n", resp.Period, resp.RangeDays)
	if resp.AssetType != "" {
		fmt.Fprintf(&sb, "Asset type: %s\n", resp.AssetType)
	}
	fmt.Fprintf(&sb, "Metric: %s\nPoints: %d\n\n", resp.Metric, resp.DataPoints)
	sb.WriteString("| Label | Value |\n|---|---:|\n")
	for i, label := range resp.Labels {
		fmt.Fprintf(&sb, "| %s | %s |\n", label, formatAmount(resp.Values[i]))
	}
	return sb.String()
}

func formatCard(card *models.CardPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Total assets (%s)\n\n", card.Interval)
	fmt.Fprintf(&sb, "Total value: %s\n", formatAmount(card.TotalValue))
	fmt.Fprintf(&sb, "Change: %s%%\n\n", formatAmount(card.WoWChangePct))
	for _, p := range card.Series {
		fmt.Fprintf(&sb, "- %s: %s\n", p.Label, formatAmount(p.Value))
	}
	return sb.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
