// Package logging sets up the process-wide slog logger: text on stdout and
// an optional rotated log file.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// ParseLevel converts a config level name. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// New builds a logger writing to console (may be nil) and to the rotated
// file when file.Path is set. Close the returned closer on shutdown.
func New(level string, console io.Writer, file FileConfig) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var (
		handlers []slog.Handler
		closer   io.Closer = nopCloser{}
	)
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}
	if file.Path != "" {
		w := &lumberjack.Logger{
			Filename:   file.Path,
			MaxSize:    file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAge:     file.MaxAgeDays,
			Compress:   file.Compress,
			LocalTime:  true,
		}
		handlers = append(handlers, slog.NewJSONHandler(w, opts))
		closer = w
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer
	}
	return slog.New(fanout(handlers)), closer
}

// Setup installs the logger as slog default.
func Setup(level string, file FileConfig) io.Closer {
	logger, closer := New(level, os.Stdout, file)
	slog.SetDefault(logger)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends every record to all handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
