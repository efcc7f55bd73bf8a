package logx

import (
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Fields is structured context attached to an entry.
type Fields map[string]any

// Entry is a single log record handed to a formatter.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  Fields
	Err     error
}

// Logger writes leveled, optionally structured log entries.
type Logger struct {
	mu        sync.Mutex
	level     Level
	out       *os.File
	formatter Formatter
	exitFn    func(int)
}

// Config controls logger construction.
type Config struct {
	Level  Level
	Format string // "console" or "json"
}

// LoadFromEnv builds a Config from LOG_LEVEL and LOG_FORMAT.
func LoadFromEnv() Config {
	return Config{
		Level:  ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
	}
}

// NewLogger creates a logger writing to stderr.
func NewLogger(cfg Config) *Logger {
	var f Formatter
	if cfg.Format == "json" {
		f = &JSONFormatter{}
	} else {
		f = &ConsoleFormatter{}
	}
	return &Logger{
		level:     cfg.Level,
		out:       os.Stderr,
		formatter: f,
		exitFn:    os.Exit,
	}
}

// SetLevel changes the minimum emitted level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w *os.File) {
	l.mu.Lock()
	l.out = w
	l.mu.Unlock()
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	line := l.formatter.Format(Entry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  fields,
		Err:     err,
	})
	l.out.Write(append(line, '\n'))
}

func (l *Logger) exit(code int) {
	if l.exitFn != nil {
		l.exitFn(code)
	}
}
