package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Config controls where log lines go and when the file rotates.
type Config struct {
	// Filename is the log file; "", "-" or "stdout" log to stdout.
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
	Level      Level

	// Output overrides Filename, mainly for tests.
	Output io.Writer
}

func DefaultConfig(filename string) Config {
	return Config{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
		Level:      INFO,
	}
}

type Logger struct {
	logger  *log.Logger
	level   Level
	fields  map[string]any
	rotator *lumberjack.Logger
}

func NewWithConfig(cfg Config) (*Logger, error) {
	l := &Logger{level: cfg.Level, fields: map[string]any{}}

	switch {
	case cfg.Output != nil:
		l.logger = log.New(cfg.Output, "", 0)
	case cfg.Filename == "" || cfg.Filename == "-" || cfg.Filename == "stdout":
		l.logger = log.New(os.Stdout, "", 0)
	default:
		dir := filepath.Dir(cfg.Filename)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
		l.rotator = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		l.logger = log.New(l.rotator, "", 0)
	}
	return l, nil
}

// New builds a logger for filename, falling back to stdout if the file cannot be opened.
func New(filename string, level Level) *Logger {
	cfg := DefaultConfig(filename)
	cfg.Level = level
	l, err := NewWithConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. Falling back to stdout.\n", err)
		l, _ = NewWithConfig(Config{Output: os.Stdout, Level: level})
	}
	return l
}

func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	nl := &Logger{
		logger:  l.logger,
		level:   l.level,
		fields:  make(map[string]any, len(l.fields)+len(fields)),
		rotator: l.rotator,
	}
	for k, v := range l.fields {
		nl.fields[k] = v
	}
	for k, v := range fields {
		nl.fields[k] = v
	}
	return nl
}

func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err)
}

func (l *Logger) log(level Level, msg string, args ...any) {
	if level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	entry := fmt.Sprintf("[%s] %s: %s", time.Now().Format("2006-01-02 15:04:05.000"), level, msg)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
		}
		entry += " | " + strings.Join(parts, " | ")
	}
	l.logger.Println(entry)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(DEBUG, msg, args...) }
func (l *Logger) Info(msg string, args ...any) { l.log(INFO, msg, args...) }
func (l *Logger) Warn(msg string, args ...any) { l.log(WARN, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(ERROR, msg, args...) }

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(ERROR, msg, args...)
	os.Exit(1)
}

// Print lets the logger back chi's request logger.
func (l *Logger) Print(v ...any) {
	l.log(INFO, strings.TrimRight(fmt.Sprint(v...), "\n"))
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

func init() {
	defaultLogger, _ = NewWithConfig(Config{Output: os.Stdout, Level: INFO})
}

func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any) { Default().Info(msg, args...) }
func Warn(msg string, args ...any) { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
func Fatal(msg string, args ...any) { Default().Fatal(msg, args...) }
func WithField(key string, value any) *Logger { return Default().WithField(key, value) }
func WithFields(fields map[string]any) *Logger { return Default().WithFields(fields) }
func WithError(err error) *Logger { return Default().WithError(err) }
