// Package app wires configuration, storage, series sources and services into
// the shared core used by the server and the CLI.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finote/internal/clients/dashboard"
	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/interfaces"
	"github.com/bobmcallan/finote/internal/services/chart"
	"github.com/bobmcallan/finote/internal/services/mockseries"
	"github.com/bobmcallan/finote/internal/services/series"
	"github.com/bobmcallan/finote/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	Store         interfaces.SeriesStore
	Source        interfaces.SeriesSource
	Mock          *mockseries.Source
	SeriesService *series.Service
	Charts        *chart.Registry
	MCPServer     *server.MCPServer
	StartupTime   time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: the given path, FINOTE_CONFIG,
// finote.toml next to the binary, then config/finote.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FINOTE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "finote.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finote.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes everything else from it.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Relative storage and log paths live next to the binary
	binDir := getBinaryDir()
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig initializes storage, the series source, services, the chart
// registry and the MCP server from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	store, err := storage.NewSeriesStore(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	loc := config.Series.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	mock := mockseries.NewSource(
		mockseries.WithSeed(config.Mock.Seed),
		mockseries.WithBaseValue(config.Mock.BaseValue),
		mockseries.WithDays(config.Mock.Days),
		mockseries.WithClock(clock),
		mockseries.WithLogger(logger),
	)

	var source interfaces.SeriesSource = mock
	if config.Series.Source == common.SourceBackend {
		source = dashboard.NewClient(
			dashboard.WithBaseURL(config.Backend.BaseURL),
			dashboard.WithSessionCookie(config.Backend.SessionCookie),
			dashboard.WithRateLimit(config.Backend.RateLimit),
			dashboard.WithTimeout(config.Backend.GetTimeout()),
			dashboard.WithLogger(logger),
		)
	}

	seriesService := series.NewService(source, store, config.Series, logger)
	charts := chart.NewRegistry(logger)

	mcpServer := server.NewMCPServer(
		"finote",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:        config,
		Logger:        logger,
		Store:         store,
		Source:        source,
		Mock:          mock,
		SeriesService: seriesService,
		Charts:        charts,
		MCPServer:     mcpServer,
		StartupTime:   startupStart,
	}

	a.registerTools()

	logger.Info().
		Str("source", source.Name()).
		Str("storage", config.Storage.Backend).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Store = nil
	}
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createResolveSeriesTool(), handleResolveSeries(a.SeriesService, a.Config.Series, a.Logger))
	s.AddTool(createCardSummaryTool(), handleCardSummary(a.SeriesService, a.Logger))
}
