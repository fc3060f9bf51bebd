// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for the commentcode pipeline
// and its command-line tool.
//
// Logger wraps log/slog with multi-destination output: stderr by default,
// plus an optional per-day JSON file when a log directory is configured.
//
//	logger := logging.Default()
//	logger.Info("starting scan", "path", root)
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    LogDir:  "~/.commentcode/logs",
//	    Service: "commentcode",
//	})
//	defer logger.Close()
//
// Beyond the generic Debug/Info/Warn/Error calls, Logger exposes a small
// set of methods for the three events the classification pipeline cares
// about (resource load, batch classification, issue emission), so every
// call site logs the same fields the same way instead of hand-rolling
// key-value pairs inline.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting: tokenizer/BPE trace
	// detail, per-batch classification outcomes.
	LevelDebug Level = iota
	// LevelInfo is for normal operational events: scan start/end, issues
	// emitted.
	LevelInfo
	// LevelWarn is for recoverable problems: a watched file that could
	// not be opened, a config field that failed to parse.
	LevelWarn
	// LevelError is for failed operations: a fatal pipeline error about
	// to abort the run.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. A zero-value Config logs Debug+ (LevelDebug
// is the zero Level) to stderr as text, with no service attribute and no
// file output.
type Config struct {
	// Level is the minimum level that reaches any destination.
	Level Level

	// LogDir, if set, also writes JSON logs to
	// "{LogDir}/{Service}_{YYYY-MM-DD}.log". Supports "~" expansion. The
	// directory is created with 0750 permissions if missing.
	LogDir string

	// Service is attached to every log entry as the "service" attribute.
	Service string
}

// Logger provides structured logging to stderr and, optionally, a daily
// JSON log file. Safe for concurrent use.
type Logger struct {
	slog *slog.Logger
	file *os.File
	mu   sync.Mutex
}

// New builds a Logger from config. Call Close when done if LogDir is set,
// to flush and close the file handle.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}
	handlers := []slog.Handler{slog.NewTextHandler(os.Stderr, opts)}

	logger := &Logger{}

	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0750); err == nil {
			serviceName := config.Service
			if serviceName == "" {
				serviceName = "commentcode"
			}
			filename := fmt.Sprintf("%s_%s.log", serviceName, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = &multiHandler{handlers: handlers}
	}
	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a Logger at LevelInfo, writing text to stderr only.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "commentcode"})
}

// Debug logs msg at Debug level with the given key-value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs msg at Info level with the given key-value attributes.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs msg at Warn level with the given key-value attributes.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs msg at Error level with the given key-value attributes.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// ResourceLoad logs the bundled merges/vocab/model having been loaded,
// at Debug level, with the stats an operator needs to confirm which
// resource bundle a running process picked up.
func (l *Logger) ResourceLoad(vocabSize, coefficientCount int, duration time.Duration) {
	l.Debug("commentcode resources loaded",
		"vocab_size", vocabSize,
		"coefficients", coefficientCount,
		"duration_ms", duration.Milliseconds(),
	)
}

// BatchClassified logs the outcome of classifying one comment batch, at
// Debug level.
func (l *Logger) BatchClassified(file string, startLine, startColumn int, decision bool, sigmoid float64) {
	l.Debug("commentcode batch classified",
		"file", file,
		"line", startLine,
		"column", startColumn,
		"decision", decision,
		"sigmoid", sigmoid,
	)
}

// IssueEmitted logs a reported S125 issue, at Info level.
func (l *Logger) IssueEmitted(file string, startLine, startColumn int) {
	l.Info("commentcode issue emitted",
		"file", file,
		"line", startLine,
		"column", startColumn,
	)
}

// With returns a child Logger that includes args on every subsequent
// call, sharing the parent's file handle.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

// Slog returns the underlying slog.Logger, for callers that need a
// feature this wrapper doesn't expose (e.g. LogAttrs).
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close syncs and closes the log file, if one is open. Safe to call on a
// Logger with no file (no-op).
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

// multiHandler fans a record out to every wrapped handler, so a single
// log call reaches both stderr and the optional file.
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
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading "~" to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
