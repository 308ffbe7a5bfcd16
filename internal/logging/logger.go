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

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *slog.Logger
	fileWriter    *lumberjack.Logger
	loggerMu      sync.Mutex
)

// LogLevel represents logging levels
type LogLevel string

const (
	// LogLevelDebug is for detailed debug information
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is for general operational information
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is for warning conditions that should be addressed
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is for error conditions that prevent normal operation
	LogLevelError LogLevel = "error"
)

// Config holds logging configuration
type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSONFormat bool
	// File enables an additional rotating log file when non-empty
	File string
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      LogLevelInfo,
		Output:     os.Stderr,
		JSONFormat: false,
	}
}

// ParseLevel maps a user supplied level name to a LogLevel, defaulting to info
func ParseLevel(name string) LogLevel {
	switch LogLevel(name) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(name)
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Initialize sets up the logger with the given configuration
func Initialize(cfg *Config) error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	logger, err := build(cfg)
	if err != nil {
		return err
	}

	defaultLogger = logger
	slog.SetDefault(defaultLogger)
	return nil
}

func build(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level := cfg.Level.slogLevel()

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(cfg.Output, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !colorEnabled(cfg.Output),
		})
	}

	if cfg.File == "" {
		return slog.New(handler), nil
	}

	if dir := filepath.Dir(cfg.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
	}

	fileHandler := tint.NewHandler(fileWriter, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})

	return slog.New(&MultiHandler{handlers: []slog.Handler{handler, fileHandler}}), nil
}

// colorEnabled reports whether w is a terminal that should receive ANSI colors
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close flushes and closes the rotating log file, if any
func Close() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// GetLogger returns the default logger
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if defaultLogger == nil {
		// The default config has no file sink, so build cannot fail here.
		defaultLogger, _ = build(nil)
	}

	return defaultLogger
}

// Debug logs a message at debug level
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info logs a message at info level
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn logs a message at warn level
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error logs a message at error level
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// WithField adds a field to the logger
func WithField(key string, value any) *slog.Logger {
	return GetLogger().With(key, value)
}

// WithFields adds multiple fields to the logger
func WithFields(fields map[string]any) *slog.Logger {
	logger := GetLogger()
	for k, v := range fields {
		logger = logger.With(k, v)
	}
	return logger
}

// MultiHandler fans records out to several handlers
type MultiHandler struct {
	handlers []slog.Handler
}

// Enabled reports whether any wrapped handler accepts the level
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every handler that accepts its level
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// WithAttrs implements slog.Handler
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

// WithGroup implements slog.Handler
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}
