// Package log provides structured logging for typstmath.
// It writes leveled, categorized lines to a debug log file and republishes
// every entry on a pub/sub broker so the viewer can surface warnings.
// Logging is off unless enabled via the --debug flag or TYPSTMATH_DEBUG env.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/typstmath/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Category groups related log messages.
type Category string

const (
	CatParse   Category = "parse"   // Source parsing
	CatWalk    Category = "walk"    // Decoration walk and shape errors
	CatEngine  Category = "engine"  // Engine requests, size guard, results
	CatConfig  Category = "config"  // Configuration loading/saving
	CatCache   Category = "cache"   // Result cache hits and misses
	CatWatcher Category = "watcher" // File watcher events
	CatAPI     Category = "api"     // HTTP decoration server
	CatPreview Category = "preview" // Terminal preview rendering
	CatUI      Category = "ui"      // Interactive viewer updates
	CatTrace   Category = "trace"   // Tracing provider lifecycle
)

// Entry is one log record.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	// Fields holds key/value pairs; an orphan key gets "<missing>".
	Fields []any
}

// String formats e as one line without the trailing newline:
//
//	2026-01-02T10:45:00 [WARN] [walk] message key=value key2=value2
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Fields[i], e.Fields[i+1])
	}
	if len(e.Fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", e.Fields[len(e.Fields)-1])
	}
	return b.String()
}

// Event is a published log entry. Errors arrive as pubsub.FailedEvent,
// everything else as pubsub.CreatedEvent.
type Event = pubsub.Event[Entry]

// Listener tails log entries from a bubbletea model.
type Listener = pubsub.ContinuousListener[Entry]

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[Entry]
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// install replaces the global logger and returns its cleanup.
func install(w io.Writer, closer io.Closer) func() {
	l := &Logger{
		closer:   closer,
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[Entry](),
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()

	return func() {
		l.mu.Lock()
		l.enabled = false
		l.mu.Unlock()
		l.broker.Close()
		if l.closer != nil {
			_ = l.closer.Close()
		}
	}
}

// Init opens (appending) the log file at path and makes it the global
// logger. The returned func closes it.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return install(f, f), nil
}

// InitWithTeaLog is Init through tea.LogToFile, which also routes
// bubbletea's own log output to the file.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return install(f, f), nil
}

// InitWriter installs a logger that writes to w.
func InitWriter(w io.Writer) func() {
	return install(w, nil)
}

// Enabled reports whether log lines are currently written.
func Enabled() bool {
	l := current()
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	if !l.enabled || level < l.minLevel {
		l.mu.Unlock()
		return
	}
	entry := Entry{Time: time.Now(), Level: level, Category: cat, Message: msg, Fields: fields}
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry.String()+"\n")
	}
	l.mu.Unlock()

	eventType := pubsub.CreatedEvent
	if level == LevelError {
		eventType = pubsub.FailedEvent
	}
	l.broker.Publish(eventType, entry)
}

// NewListener subscribes to log entries until ctx is done. It returns nil
// when no logger is installed.
func NewListener(ctx context.Context) *Listener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener[Entry](ctx, l.broker)
}
