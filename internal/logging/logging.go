// Package logging builds the process-wide zap logger: a colorized console
// core, optionally teed with a rotated JSON file core.
package logging

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the log level and the optional rotated log file.
type Config struct {
	Level string // debug, info, warn, error
	File  string // empty disables the file core

	// Rotation settings for the file core.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	// global stores the logger safely across goroutines.
	global atomic.Pointer[zap.Logger]
	// once ensures that initialization happens exactly once.
	once sync.Once
)

// Initialize sets up the global logger from the config, writing console
// output to the given syncer. Subsequent calls are no-ops.
func Initialize(cfg Config, console zapcore.WriteSyncer) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

		cores := []zapcore.Core{
			zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), console, level),
		}

		if cfg.File != "" {
			fileCfg := zap.NewProductionEncoderConfig()
			fileCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
			fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
			// lumberjack handles rotation and thread-safe writes.
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
			})
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), fileWriter, level))
		}

		logger := zap.New(zapcore.NewTee(cores...),
			zap.AddStacktrace(zap.ErrorLevel)).Named("boids")
		global.Store(logger)

		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// Init is the production entry point: console output goes to stdout.
func Init(cfg Config) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// L returns the global logger, falling back to a no-op logger before Init.
func L() *zap.Logger {
	if logger := global.Load(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// Sync flushes buffered entries; call before process exit. Sync errors on
// stdout are expected on some platforms and ignored.
func Sync() {
	if logger := global.Load(); logger != nil {
		_ = logger.Sync()
	}
}

// resetForTest clears the global logger so each test can initialize its own.
func resetForTest() {
	global.Store(nil)
	once = sync.Once{}
}
