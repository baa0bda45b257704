package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options: параметры логгера из секции log конфига.
type Options struct {
	Level  string // debug, info, warn, error
	Output string // stdout | file
	File   string

	// Ротация (для Output=file), нули — значения по умолчанию.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	mu            sync.RWMutex
	defaultLogger = zap.NewNop()
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.CallerKey = "caller"
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.MessageKey = "message"
	return cfg
}

// New строит zap-логгер: JSON в stdout или в файл с ротацией через lumberjack.
func New(opts Options) (*zap.Logger, error) {
	level := ParseLevel(opts.Level)

	var sink zapcore.WriteSyncer
	switch strings.ToLower(opts.Output) {
	case "", "stdout":
		sink = zapcore.Lock(os.Stdout)
	case "stderr":
		sink = zapcore.Lock(os.Stderr)
	case "file":
		if opts.File == "" {
			return nil, fmt.Errorf("logger: file output requires a file path")
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    withDefault(opts.MaxSizeMB, 100),
			MaxBackups: withDefault(opts.MaxBackups, 3),
			MaxAge:     withDefault(opts.MaxAgeDays, 28),
			Compress:   opts.Compress,
		})
	default:
		return nil, fmt.Errorf("logger: unknown output %q", opts.Output)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// Init создаёт логгер и делает его логгером по умолчанию.
func Init(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}

// SetDefault подменяет логгер по умолчанию (удобно в тестах).
func SetDefault(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		_ = defaultLogger.Sync()
	}
	defaultLogger = l
}

// L: текущий логгер по умолчанию.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func Debug(format string, args ...any) { L().Debug(fmt.Sprintf(format, args...)) }
func Info(format string, args ...any)  { L().Info(fmt.Sprintf(format, args...)) }
func Warn(format string, args ...any)  { L().Warn(fmt.Sprintf(format, args...)) }
func Error(format string, args ...any) { L().Error(fmt.Sprintf(format, args...)) }
func Fatal(format string, args ...any) { L().Fatal(fmt.Sprintf(format, args...)) }

// With добавляет структурные поля. Возвращённый логгер вызывается напрямую,
// поэтому пропуск кадра для printf-обёрток снимается.
func With(fields ...zap.Field) *zap.Logger {
	return L().WithOptions(zap.AddCallerSkip(-1)).With(fields...)
}

func Sync() {
	_ = L().Sync()
}

// ParseLevel разбирает уровень логирования, по умолчанию info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
