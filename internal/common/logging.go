// Package common provides shared utilities for Finote
package common

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps log.Logger to provide a consistent interface
type Logger struct {
	log.Logger
}

// teeWriter fans one entry out to several writers.
type teeWriter []log.Writer

func (t teeWriter) WriteEntry(e *log.Entry) (n int, err error) {
	for _, w := range t {
		if n, err = w.WriteEntry(e); err != nil {
			return n, err
		}
	}
	return n, nil
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// NewLogger creates a console logger on stderr with the specified level
func NewLogger(level string) *Logger {
	return &Logger{Logger: log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: true,
		},
	}}
}

// NewLoggerFromConfig builds a logger from the [logging] section.
// Outputs may include "console" (stderr) and "file" (rotated by size).
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	var writers teeWriter
	for _, out := range cfg.Outputs {
		switch strings.ToLower(out) {
		case "console", "stderr":
			if strings.EqualFold(cfg.Format, "json") {
				writers = append(writers, &log.IOWriter{Writer: os.Stderr})
			} else {
				writers = append(writers, &log.ConsoleWriter{Writer: os.Stderr, ColorOutput: true})
			}
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			_ = os.MkdirAll(filepath.Dir(cfg.FilePath), 0755)
			writers = append(writers, &log.IOWriter{Writer: &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				Compress:   true,
			}})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, &log.ConsoleWriter{Writer: os.Stderr})
	}

	var w log.Writer = writers
	if len(writers) == 1 {
		w = writers[0]
	}
	return &Logger{Logger: log.Logger{
		Level:  parseLevel(cfg.Level),
		Writer: w,
	}}
}

// NewLoggerWithOutput creates a JSON logger writing to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	return &Logger{Logger: log.Logger{
		Level:  parseLevel(level),
		Writer: &log.IOWriter{Writer: w},
	}}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{Logger: log.Logger{
		Level:  log.ErrorLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}}
}
