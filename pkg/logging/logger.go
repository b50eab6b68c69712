// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for Aleutian components.
//
// The design is layered for both CLI usage and server deployment:
//
//   - Default: stderr output for CLI compatibility (Unix conventions)
//   - Optional: file logging with automatic directory creation
//   - Extensible: LogExporter interface for shipping logs elsewhere
//
// # Basic Usage
//
// For simple CLI usage with stderr output:
//
//	logger := logging.Default()
//	logger.Info("network built", "nodes", summary.NodesCreated)
//	logger.Error("build failed", "error", err)
//
// # File Logging
//
// To enable file logging alongside stderr:
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.aleutian/logs",  // Supports ~ expansion
//	    Service: "research",
//	})
//	defer logger.Close()  // Important: flushes and closes file
//
// This creates log files named `{service}_{date}.log` in JSON format.
//
// # Thread Safety
//
// Logger is safe for concurrent use. Internal state is protected by a
// mutex, and the underlying slog.Logger is thread-safe.
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Callers
// must ensure PII, tokens, and secrets are not logged.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity levels.
//
// Levels follow the slog convention and are ordered by severity:
// Debug < Info < Warn < Error. Setting a minimum level filters out all
// logs below that level.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operations (builds, analyses, swaps).
	LevelInfo

	// LevelWarn is for recoverable issues (skipped records, retries).
	LevelWarn

	// LevelError is for operation failures.
	LevelError
)

// String returns the level's lowercase name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a lowercase level name to a Level. Unknown names
// fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to emit. Default: LevelInfo
	Level Level

	// LogDir enables file logging when non-empty. The directory is
	// created if needed; "~" expands to the user's home directory.
	LogDir string

	// Service names the component; used in file names and as a
	// top-level attribute. Default: "research"
	Service string

	// Exporter receives every emitted entry, if set. Export errors
	// are swallowed; logging never fails the caller.
	Exporter LogExporter

	// Stderr overrides the default stderr destination. Tests use
	// this to capture output.
	Stderr io.Writer
}

// LogExporter ships log entries to an external system.
//
// Implementations should buffer internally; Export is called inline
// on the logging path and must be fast.
type LogExporter interface {
	// Export receives one entry.
	Export(ctx context.Context, entry LogEntry) error

	// Flush forces buffered entries out.
	Flush(ctx context.Context) error

	// Close flushes and releases resources.
	Close() error
}

// LogEntry is the exporter-facing form of one log record.
type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Service string         `json:"service"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Logger is the package's logger: stderr always, file and exporter
// when configured.
type Logger struct {
	slogger *slog.Logger
	config  Config

	mu      sync.Mutex
	logFile *os.File
}

// New creates a Logger from the config.
//
// File logging failures degrade to stderr-only with a warning rather
// than failing construction; a CLI must never die because a log
// directory is unwritable.
func New(config Config) *Logger {
	if config.Service == "" {
		config.Service = "research"
	}
	if config.Stderr == nil {
		config.Stderr = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	handlers := []slog.Handler{slog.NewTextHandler(config.Stderr, opts)}

	logger := &Logger{config: config}

	if config.LogDir != "" {
		dir := expandPath(config.LogDir)
		if err := os.MkdirAll(dir, 0750); err != nil {
			fmt.Fprintf(config.Stderr, "logging: cannot create %s: %v\n", dir, err)
		} else {
			name := fmt.Sprintf("%s_%s.log", config.Service, time.Now().Format("2006-01-02"))
			f, err := os.OpenFile(filepath.Join(dir, name),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
			if err != nil {
				fmt.Fprintf(config.Stderr, "logging: cannot open log file: %v\n", err)
			} else {
				logger.logFile = f
				handlers = append(handlers, slog.NewJSONHandler(f, opts))
			}
		}
	}

	logger.slogger = slog.New(&multiHandler{handlers: handlers}).
		With("service", config.Service)
	return logger
}

// Default returns a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{Level: LevelInfo})
}

// Debug logs at debug level with slog key-value args.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LevelDebug, msg, args...)
}

// Info logs at info level with slog key-value args.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs at warn level with slog key-value args.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LevelWarn, msg, args...)
}

// Error logs at error level with slog key-value args.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LevelError, msg, args...)
}

// With returns a Logger carrying additional attributes. The derived
// logger shares the parent's file handle and exporter.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		config:  l.config,
		logFile: l.logFile,
	}
}

// Slog exposes the underlying slog.Logger for libraries that take one.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

// Close flushes the exporter and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	if l.config.Exporter != nil {
		if err := l.config.Exporter.Close(); err != nil {
			firstErr = err
		}
	}
	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.logFile = nil
	}
	return firstErr
}

func (l *Logger) log(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		l.slogger.Debug(msg, args...)
	case LevelWarn:
		l.slogger.Warn(msg, args...)
	case LevelError:
		l.slogger.Error(msg, args...)
	default:
		l.slogger.Info(msg, args...)
	}

	if l.config.Exporter != nil && level >= l.config.Level {
		// Export errors are intentionally dropped.
		_ = l.config.Exporter.Export(context.Background(), LogEntry{
			Time:    time.Now(),
			Level:   level.String(),
			Message: msg,
			Service: l.config.Service,
			Attrs:   argsToMap(args),
		})
	}
}

// multiHandler fans one record out to several slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func argsToMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		m[key] = args[i+1]
	}
	return m
}

// NopExporter discards everything; useful as a default.
type NopExporter struct{}

// Export implements LogExporter.
func (e *NopExporter) Export(ctx context.Context, entry LogEntry) error { return nil }

// Flush implements LogExporter.
func (e *NopExporter) Flush(ctx context.Context) error { return nil }

// Close implements LogExporter.
func (e *NopExporter) Close() error { return nil }

var _ LogExporter = (*NopExporter)(nil)

// BufferedExporter collects entries in memory. Tests use it to assert
// on exported entries.
type BufferedExporter struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewBufferedExporter creates an empty buffer.
func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{}
}

// Export implements LogExporter.
func (e *BufferedExporter) Export(ctx context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

// Flush implements LogExporter.
func (e *BufferedExporter) Flush(ctx context.Context) error { return nil }

// Close implements LogExporter.
func (e *BufferedExporter) Close() error { return nil }

// Entries returns a copy of everything exported so far.
func (e *BufferedExporter) Entries() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]LogEntry, len(e.entries))
	copy(out, e.entries)
	return out
}
