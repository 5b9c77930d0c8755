// Package log is the regview debug logger. Entries are plain text lines with
// level, category and key=value fields, written to a file and kept in a
// bounded buffer for the in-app log overlay. Nothing is logged unless Init
// was called (--debug or REGVIEW_DEBUG).
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
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
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatIndex  Category = "index"  // index cache loads
	CatObject Category = "object" // object resolution
	CatNav    Category = "nav"    // navigator transitions and fragment handling
	CatHTTP   Category = "http"   // registry requests
	CatConfig Category = "config" // configuration loading/saving
	CatUI     Category = "ui"     // UI component updates
	CatCache  Category = "cache"  // history snapshot store
	CatTrace  Category = "trace"  // tracing provider lifecycle
)

// DefaultBufferSize is how many recent entries the overlay can show.
const DefaultBufferSize = 500

// Logger writes formatted entries to w and retains the most recent ones.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	recent   []string
	limit    int
	feed     *Feed
	now      func() time.Time
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// New creates a logger over w. A limit of zero uses DefaultBufferSize.
func New(w io.Writer, limit int) *Logger {
	if limit <= 0 {
		limit = DefaultBufferSize
	}
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		limit:    limit,
		feed:     NewFeed(),
		now:      time.Now,
	}
}

// Init opens path for appending and installs it as the global logger.
// The returned func closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	l := New(f, DefaultBufferSize)
	SetDefault(l)
	return func() {
		SetDefault(nil)
		_ = f.Close()
	}, nil
}

// SetDefault installs l as the global logger. nil disables logging.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil && defaultLogger != l {
		defaultLogger.feed.Close()
	}
	defaultLogger = l
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum level written.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	if l := current(); l != nil {
		l.Log(level, cat, msg, fields...)
	}
}

// Log formats and records one entry:
//
//	2025-12-06T10:45:00 [ERROR] [object] fetch failed target=route/x
func (l *Logger) Log(level Level, cat Category, msg string, fields ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", l.now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	entry := b.String()

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry+"\n")
	}
	l.recent = append(l.recent, entry)
	if over := len(l.recent) - l.limit; over > 0 {
		l.recent = append(l.recent[:0:0], l.recent[over:]...)
	}
	l.feed.Publish(Entry{Level: level, Category: cat, Line: entry})
}

// Recent returns up to n of the newest entries, oldest first.
func (l *Logger) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.recent) {
		n = len(l.recent)
	}
	out := make([]string, n)
	copy(out, l.recent[len(l.recent)-n:])
	return out
}

func (l *Logger) Clear() {
	l.mu.Lock()
	l.recent = nil
	l.mu.Unlock()
}

// GetRecentLogs returns up to n recent entries from the global logger.
func GetRecentLogs(n int) []string {
	if l := current(); l != nil {
		return l.Recent(n)
	}
	return nil
}

// ClearBuffer drops the retained entries of the global logger.
func ClearBuffer() {
	if l := current(); l != nil {
		l.Clear()
	}
}
