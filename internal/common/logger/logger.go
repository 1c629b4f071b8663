package logger

import (
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one JSON line per event. Every entry carries the service
// name and an action; extra fields are attached as-is.
type Logger struct {
	root    *zap.Logger
	z       *zap.Logger
}

type Option func(*zap.Config)

// WithLevel sets the minimum level: debug, info, warn or error.
func WithLevel(level string) Option {
	return func(c *zap.Config) {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err == nil {
			c.Level = zap.NewAtomicLevelAt(lvl)
		}
	}
}

// WithOutput sends entries to a file path, or to "stdout" / "stderr".
func WithOutput(path string) Option {
	return func(c *zap.Config) {
		if path != "" {
			c.OutputPaths = []string{path}
		}
	}
}

func New(service string, opts ...Option) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	for _, o := range opts {
		o(&cfg)
	}
	z, err := cfg.Build(zap.Fields(zap.String("hostname", hostname())))
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{root: z, z: z.With(zap.String("service", service))}
}

// NewNop discards everything.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{root: z, z: z}
}

// Named returns a logger for another service sharing the same sink.
func (l *Logger) Named(service string) *Logger {
	return &Logger{root: l.root, z: l.root.With(zap.String("service", service))}
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.z.Info(action, toZap(action, fields)...)
}

func (l *Logger) Debug(action string, fields map[string]any) {
	l.z.Debug(action, toZap(action, fields)...)
}

func (l *Logger) Warn(action string, fields map[string]any) {
	l.z.Warn(action, toZap(action, fields)...)
}

func (l *Logger) Error(action string, err error, fields map[string]any) {
	zf := toZap(action, fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.z.Error(action, zf...)
}

func (l *Logger) Sync() error { return l.z.Sync() }

func toZap(action string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("action", action))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

func hostname() string { h, _ := os.Hostname(); return h }
