package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr.
func PrintBanner(config *Config, logger *Logger) {
	writeBanner(os.Stderr, config)

	logger.Info().
		Str("version", GetVersion()).
		Str("build", GetBuild()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("service_url", serviceURL(config)).
		Str("series_source", config.Series.Source).
		Str("storage", storageDescription(config)).
		Msg("Application started")
}

func serviceURL(config *Config) string {
	return fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
}

func storageDescription(config *Config) string {
	switch config.Storage.Backend {
	case StorageSurrealDB:
		return fmt.Sprintf("surrealdb %s (%s/%s)", config.Storage.Address, config.Storage.Namespace, config.Storage.Database)
	default:
		return fmt.Sprintf("%s %s", config.Storage.Backend, config.Storage.Path)
	}
}

func writeBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 70
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 8888888888 8888888 888b    888  .d88888b. 88888888888 8888888888`,
		` 888          888   8888b   888 d88P" "Y88b    888     888`,
		` 888          888   88888b  888 888     888    888     888`,
		` 8888888      888   888Y88b 888 888     888    888     8888888`,
		` 888          888   888 Y88b888 888     888    888     888`,
		` 888          888   888  Y88888 888     888    888     888`,
		` 888          888   888   Y8888 Y88b. .d88P    888     888`,
		` 888        8888888 888    Y888  "Y88888P"     888     8888888888`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Portfolio Dashboard Series%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "\n%s\n\n", hr)

	kvPad := 16
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Service URL", serviceURL(config)},
		{"Series Source", config.Series.Source},
		{"Storage", storageDescription(config)},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintShutdownBanner displays the application shutdown banner to stderr.
func PrintShutdownBanner(logger *Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  FINOTE: SHUTTING DOWN%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info().Msg("Application shutting down")
}
