package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init sets the process-wide logger once the CLI has parsed its flags.
func Init(z *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()
	global = z
}

// Logger returns the process-wide logger. It never returns nil: before Init
// is called a no-op logger is handed out so library code can log freely.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}

// New builds a console logger writing to stderr at the shared atomic level.
func New(levelName string) (*zap.SugaredLogger, error) {
	if err := SetLogLevel(levelName); err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return z.Sugar(), nil
}

// SetLogLevel changes the level of every logger built by New.
func SetLogLevel(levelName string) error {
	if levelName == "" {
		return nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(levelName))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	level.SetLevel(l)
	return nil
}

// Level returns the current shared log level.
func Level() zapcore.Level {
	return level.Level()
}
