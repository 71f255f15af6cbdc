package app

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
)

// stubSeriesService records the last request and returns canned payloads.
type stubSeriesService struct {
	lastRequest  models.SeriesRequest
	lastInterval models.Interval
	lastAsset    string
	response     *models.SeriesResponse
	card         *models.CardPayload
	err          error
}

func (s *stubSeriesService) LoadRaw(ctx context.Context, assetType string, metric models.Metric) (models.RawTimeSeries, error) {
	return nil, s.err
}

func (s *stubSeriesService) Resolve(ctx context.Context, req models.SeriesRequest) (*models.SeriesResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	if s.response != nil {
		return s.response, nil
	}
	return &models.SeriesResponse{Period: req.Period, RangeDays: req.RangeDays, Metric: req.Metric}, nil
}

func (s *stubSeriesService) Card(ctx context.Context, assetType string, interval models.Interval) (*models.CardPayload, error) {
	s.lastAsset = assetType
	s.lastInterval = interval
	if s.err != nil {
		return nil, s.err
	}
	if s.card != nil {
		return s.card, nil
	}
	return &models.CardPayload{Interval: interval}, nil
}

// testHarness provides an in-process MCP client connected to a Finote server
// backed by a stub series service.
type testHarness struct {
	t         *testing.T
	client    *client.Client
	mcpServer *server.MCPServer
	series    *stubSeriesService
	logger    *common.Logger
}

// newTestHarness creates a Finote MCP server with the stub service and an
// initialized in-process client.
func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := common.NewLogger("error")
	stub := &stubSeriesService{}
	cfg := common.NewDefaultConfig().Series

	mcpServer := server.NewMCPServer(
		"finote-test",
		"test",
		server.WithToolCapabilities(true),
	)
	mcpServer.AddTool(createGetVersionTool(), handleGetVersion())
	mcpServer.AddTool(createResolveSeriesTool(), handleResolveSeries(stub, cfg, logger))
	mcpServer.AddTool(createCardSummaryTool(), handleCardSummary(stub, logger))

	c, err := newInProcessClient(t, mcpServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}

	h := &testHarness{
		t:         t,
		client:    c,
		mcpServer: mcpServer,
		series:    stub,
		logger:    logger,
	}
	t.Cleanup(h.close)
	return h
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	h.t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h.client.CallTool(context.Background(), req)
}

// getTextContent extracts text from a content block at the given index.
func (h *testHarness) getTextContent(result *mcp.CallToolResult, index int) string {
	h.t.Helper()
	if index >= len(result.Content) {
		h.t.Fatalf("Content index %d out of range (have %d blocks)", index, len(result.Content))
	}
	tc, ok := result.Content[index].(mcp.TextContent)
	if !ok {
		h.t.Fatalf("Content[%d] is %T, not TextContent", index, result.Content[index])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}
