// Package logging provides config-driven categorized logging for SourceTalk.
// Every category is a named child of one zap logger; a disabled category gets a
// no-op logger so call sites never need to check.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, configuration loading
	CategoryAPI     Category = "api"     // Content API calls
	CategoryRelay   Category = "relay"   // Chat webhook calls
	CategoryListing Category = "listing" // Filter edits, loads, stale responses
	CategoryChat    Category = "chat"    // Chat turns
	CategoryServer  Category = "server"  // HTTP backend
	CategoryConfig  Category = "config"  // Config file watching
)

// Options selects level, encoding, destination and per-category toggles.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	File       string          // empty = stderr
	Categories map[string]bool // missing category = enabled
}

// Logger is a category logger with printf-style methods.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	opts    Options
	loggers = make(map[Category]*Logger)
)

// Initialize builds the root zap logger from cfg. It may be called again to
// apply a changed configuration; category loggers are rebuilt lazily.
func Initialize(cfg Options) error {
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.Format == "console" || cfg.Format == "text" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.Sampling = nil
	if cfg.File != "" {
		zcfg.OutputPaths = []string{cfg.File}
	} else {
		zcfg.OutputPaths = []string{"stderr"}
	}

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	base = l
	opts = cfg
	loggers = make(map[Category]*Logger)
	return nil
}

// Replace swaps the root logger, keeping the category toggles. Tests use it
// with zaptest/observer cores.
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	loggers = make(map[Category]*Logger)
}

// Reset drops back to a no-op root logger with every category enabled.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	base = zap.NewNop()
	opts = Options{}
	loggers = make(map[Category]*Logger)
}

// L returns the root logger for call sites that want structured fields.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabled(category)
}

func categoryEnabled(category Category) bool {
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	zl := zap.NewNop()
	if categoryEnabled(category) {
		zl = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: zl.Sugar()}
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L().Sync()
}

// Category returns the category this logger writes to.
func (l *Logger) Category() Category { return l.category }

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// With returns a structured child logger carrying keysAndValues.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }

func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }
func APIWarn(format string, args ...interface{})  { Get(CategoryAPI).Warn(format, args...) }
func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }

func Relay(format string, args ...interface{})      { Get(CategoryRelay).Info(format, args...) }
func RelayDebug(format string, args ...interface{}) { Get(CategoryRelay).Debug(format, args...) }
func RelayError(format string, args ...interface{}) { Get(CategoryRelay).Error(format, args...) }

func Listing(format string, args ...interface{})      { Get(CategoryListing).Info(format, args...) }
func ListingDebug(format string, args ...interface{}) { Get(CategoryListing).Debug(format, args...) }
func ListingWarn(format string, args ...interface{})  { Get(CategoryListing).Warn(format, args...) }

func Chat(format string, args ...interface{})      { Get(CategoryChat).Info(format, args...) }
func ChatDebug(format string, args ...interface{}) { Get(CategoryChat).Debug(format, args...) }
func ChatWarn(format string, args ...interface{})  { Get(CategoryChat).Warn(format, args...) }

func Server(format string, args ...interface{})      { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{}) { Get(CategoryServer).Debug(format, args...) }
func ServerError(format string, args ...interface{}) { Get(CategoryServer).Error(format, args...) }

func Config(format string, args ...interface{})     { Get(CategoryConfig).Info(format, args...) }
func ConfigWarn(format string, args ...interface{}) { Get(CategoryConfig).Warn(format, args...) }
