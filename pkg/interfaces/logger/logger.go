package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Field is one structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging contract accepted by every service in the module.
// Adapters for go-logger, zap or slog only need these five methods.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Nop discards every entry.
type Nop struct{}

var _ Logger = (*Nop)(nil)

func (n *Nop) With(...Field) Logger { return n }
func (*Nop) Debug(string, ...Field) {}
func (*Nop) Info(string, ...Field)  {}
func (*Nop) Warn(string, ...Field)  {}
func (*Nop) Error(string, ...Field) {}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// BasicLogger writes one line per entry with fields rendered as key=value
// pairs sorted by key.
type BasicLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	now    func() time.Time
	fields []Field
}

var _ Logger = (*BasicLogger)(nil)

// BasicOption customises a BasicLogger.
type BasicOption func(*BasicLogger)

// WithWriter redirects output, stdout by default.
func WithWriter(w io.Writer) BasicOption {
	return func(l *BasicLogger) {
		if w != nil {
			l.out = w
		}
	}
}

// WithLevel drops entries below level.
func WithLevel(level Level) BasicOption {
	return func(l *BasicLogger) {
		l.level = level
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) BasicOption {
	return func(l *BasicLogger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a basic logger writing to stdout at info level.
func New(opts ...BasicOption) *BasicLogger {
	l := &BasicLogger{
		mu:    &sync.Mutex{},
		out:   os.Stdout,
		level: LevelInfo,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Default returns the default basic logger implementation.
func Default() Logger {
	return New()
}

// With returns a logger that includes fields on each log line.
func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := *l
	next.fields = append(append([]Field(nil), l.fields...), fields...)
	return &next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *BasicLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *BasicLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *BasicLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	line := fmt.Sprintf("%s [%s] %s", l.now().UTC().Format(time.RFC3339), level, msg)
	if rendered := formatFields(append(append([]Field(nil), l.fields...), fields...)); rendered != "" {
		line += " " + rendered
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, line)
	l.mu.Unlock()
}

func formatFields(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	merged := make(map[string]any, len(fields))
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
	}
	return strings.Join(parts, " ")
}
