package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how much is logged.
type Options struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.Mutex
	logger = zap.NewNop()
	sink   *lumberjack.Logger
)

// Init points the package logger at a rotating file. The terminal is never
// written to, so the TUI stays clean. Calling Init again replaces the sink.
func Init(opts Options) error {
	if opts.File == "" {
		return fmt.Errorf("log file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)

	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	sink = rotator
	logger = zap.New(core, zap.AddCaller())
	return nil
}

// L returns the structured logger. Before Init it discards everything.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a log message
func Log(format string, v ...interface{}) {
	L().WithOptions(zap.AddCallerSkip(1)).Info(fmt.Sprintf(format, v...))
}

// LogError writes an error log message
func LogError(err error, format string, v ...interface{}) {
	L().WithOptions(zap.AddCallerSkip(1)).Error(fmt.Sprintf(format, v...), zap.Error(err))
}

// CloseLog flushes and closes the log file
func CloseLog() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = zap.NewNop()
}

func closeLocked() {
	_ = logger.Sync()
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
}
