// Package logging wires a log/slog logger for the training engine and
// retains a ring-buffer of recent entries so GetMasterComponentInfo can
// surface recent lifecycle events (model init, checkpoint commits, batch
// failures) without a separate log-shipping pipeline.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextKey namespaces context values this package recognizes.
type ContextKey string

const (
	BatchIDKey   ContextKey = "batch_id"
	PassKey      ContextKey = "pass"
	ComponentKey ContextKey = "component"
)

// Config controls the slog handler construction.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	// BufferSize is the ring-buffer capacity backing Buffer(); 0 uses the
	// default.
	BufferSize int
}

// DefaultConfig returns the engine's default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Output: os.Stderr,
	}
}

// Logger wraps a *slog.Logger with the ring-buffer every record is also
// appended to.
type Logger struct {
	*slog.Logger
	buffer *LogBuffer
}

// New builds a Logger from cfg, defaulting any unset fields.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	buffer := NewLogBuffer(cfg.BufferSize)
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var base slog.Handler
	if cfg.Format == "text" {
		base = slog.NewTextHandler(out, opts)
	} else {
		base = slog.NewJSONHandler(out, opts)
	}

	handler := &bufferingHandler{Handler: base, buffer: buffer}
	return &Logger{Logger: slog.New(handler), buffer: buffer}
}

// Buffer returns the ring-buffer of recent entries for introspection.
func (l *Logger) Buffer() *LogBuffer { return l.buffer }

// WithContext returns a logger carrying BatchID/Pass/Component attributes
// extracted from ctx, when present.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := make([]any, 0, 6)
	if v, ok := ctx.Value(BatchIDKey).(string); ok && v != "" {
		attrs = append(attrs, "batch_id", v)
	}
	if v, ok := ctx.Value(PassKey).(int); ok {
		attrs = append(attrs, "pass", v)
	}
	if v, ok := ctx.Value(ComponentKey).(string); ok && v != "" {
		attrs = append(attrs, "component", v)
	}
	if len(attrs) == 0 {
		return l.Logger
	}
	return l.Logger.With(attrs...)
}
