package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"questboard/internal/config"
)

// Config holds logger configuration.
type Config struct {
	LogDir     string
	LogFile    string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	DevMode    bool
	Level      slog.Level
}

// FromConfig converts the file/env log settings, parsing the level name.
func FromConfig(c config.LogConfig) (Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return Config{}, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	return Config{
		LogDir:     c.Dir,
		LogFile:    c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		DevMode:    c.Dev,
		Level:      level,
	}, nil
}

// fanout sends each record to every handler that accepts its level.
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
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
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

// New creates a logger that writes JSON to a rolling file and a
// human-readable stream to stderr. Close the returned Closer on exit.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, cfg.LogFile),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	return slog.New(fanout{
		slog.NewJSONHandler(lj, opts),
		console(os.Stderr, cfg),
	}), lj, nil
}

func console(w io.Writer, cfg Config) slog.Handler {
	if cfg.DevMode {
		return tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: "15:04:05",
		})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level})
}

// Discard returns a logger that drops everything; used by tests and one-shot commands.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
