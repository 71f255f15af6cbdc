package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/finote/internal/app"
	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/server"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	a, err := app.NewApp(os.Getenv("FINOTE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)
	a.StartWarmCache()

	srv := server.NewServer(a)
	shutdownChan := make(chan struct{}, 1)
	srv.SetShutdownChannel(shutdownChan)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	port := a.Config.Server.Port
	a.Logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", port)).
		Str("mcp", fmt.Sprintf("http://localhost:%d/mcp", port)).
		Str("source", a.Source.Name()).
		Msg("Server ready")

	// Wait for interrupt signal or HTTP shutdown request
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		a.Logger.Info().Msg("Shutdown signal received")
	case <-shutdownChan:
		a.Logger.Info().Msg("HTTP shutdown requested")
	}

	common.PrintShutdownBanner(a.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	a.Close()
	a.Logger.Info().Msg("Server stopped")
}
