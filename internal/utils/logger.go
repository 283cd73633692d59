// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// Package utils implements extra functionality like logging.
package utils //nolint:revive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// CreateLogger creates and configures an slog logger writing to w.
// Under the stdio transport the MCP protocol owns stdout, so callers
// must pass os.Stderr there.
func CreateLogger(logLevel LogLevel, w io.Writer) *slog.Logger {
	return slog.New(NewDefaultTextHandler(
		w,
		ParseLogLevel(logLevel),
	))
}

// ParseLogLevel converts a LogLevel representation to slog.Level.
//
//nolint:revive
func ParseLogLevel(logLevel LogLevel) slog.Level {
	switch logLevel {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultTextHandler renders records as single
// "YYYY-MM-DD hh:mm:ss LEVEL message k=v" lines.
type DefaultTextHandler struct {
	w     io.Writer
	level slog.Level
}

// NewDefaultTextHandler creates a DefaultTextHandler writing to w.
func NewDefaultTextHandler(w io.Writer, level slog.Level) *DefaultTextHandler {
	return &DefaultTextHandler{w: w, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *DefaultTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a single log record.
func (h *DefaultTextHandler) Handle(_ context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006-01-02 15:04:05")

	levelStr := r.Level.String()

	line := fmt.Sprintf("%s %s %s", timeStr, levelStr, r.Message)

	r.Attrs(func(attr slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", attr.Key, attr.Value.Any())

		return true
	})

	_, err := fmt.Fprintln(h.w, line)

	return err
}

// WithAttrs implements slog.Handler.
func (h *DefaultTextHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	// do nothing, all attributes are processed in Handle
	return h
}

// WithGroup implements slog.Handler.
func (h *DefaultTextHandler) WithGroup(_ string) slog.Handler {
	return h
}
