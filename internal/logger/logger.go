// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the shared logger. It writes warnings and above to stderr
// until Init is called.
var Logger = New(os.Stderr, "warn")

// Init replaces Logger with one writing to stderr at the given level.
func Init(level string) {
	Logger = New(os.Stderr, level)
}

// New builds a text logger at the given level. Unknown levels fall back
// to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
