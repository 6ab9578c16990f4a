// Package notify provides the user-facing notification log of the editor.
//
// The Sink is an append-only list of leveled messages together with a
// "current" severity marker that the status bar uses to decide how loudly to
// announce that something was logged. Plugins write into the sink through
// context.log; the host writes plugin failures into it at LevelError.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a notification. Higher is more severe.
type Level int

const (
	// LevelNone means nothing has been logged since the marker was reset.
	LevelNone Level = iota
	// LevelDebug is for diagnostic output.
	LevelDebug
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarning is for recoverable problems.
	LevelWarning
	// LevelError is for failures.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "None"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FromScript maps the small integer a plugin passes to context.log onto a
// Level. 1 is Debug, 2 Info, 3 Warning, 4 Error; values below the range
// clamp to Debug and values above it clamp to Error.
func FromScript(n int) Level {
	switch {
	case n <= int(LevelDebug):
		return LevelDebug
	case n >= int(LevelError):
		return LevelError
	default:
		return Level(n)
	}
}

// logrusLevel maps a Level onto the process logger's level.
func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelError:
		return logrus.ErrorLevel
	case LevelWarning:
		return logrus.WarnLevel
	case LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// Entry is a single notification.
type Entry struct {
	Level   Level
	Message string
	Time    time.Time
}

// DefaultMaxEntries bounds the number of entries a Sink retains.
const DefaultMaxEntries = 4096

// Sink collects notifications.
type Sink struct {
	mu         sync.Mutex
	entries    []Entry
	current    Level
	maxEntries int
	mirror     *logrus.Entry
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithMaxEntries bounds the retained entries; older entries are dropped first.
func WithMaxEntries(n int) SinkOption {
	return func(s *Sink) {
		s.maxEntries = n
	}
}

// WithMirror copies every entry into the given process logger.
func WithMirror(log *logrus.Logger) SinkOption {
	return func(s *Sink) {
		if log != nil {
			s.mirror = log.WithField("component", "notify")
		}
	}
}

// NewSink creates an empty sink.
func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{
		current:    LevelNone,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log appends an entry and moves the current marker to its level.
func (s *Sink) Log(level Level, message string) {
	s.mu.Lock()
	s.entries = append(s.entries, Entry{Level: level, Message: message, Time: time.Now()})
	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.entries = append(s.entries[:0:0], s.entries[len(s.entries)-s.maxEntries:]...)
	}
	s.current = level
	mirror := s.mirror
	s.mu.Unlock()

	if mirror != nil {
		mirror.Log(level.logrusLevel(), message)
	}
}

// Debugf logs a formatted message at LevelDebug.
func (s *Sink) Debugf(format string, args ...any) {
	s.Log(LevelDebug, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message at LevelInfo.
func (s *Sink) Infof(format string, args ...any) {
	s.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warningf logs a formatted message at LevelWarning.
func (s *Sink) Warningf(format string, args ...any) {
	s.Log(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at LevelError.
func (s *Sink) Errorf(format string, args ...any) {
	s.Log(LevelError, fmt.Sprintf(format, args...))
}

// Level returns the current severity marker.
func (s *Sink) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ResetLevel sets the marker back to LevelNone without dropping entries.
// The log view calls this once the user has seen the notifications.
func (s *Sink) ResetLevel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = LevelNone
}

// Entries returns a copy of all entries, oldest first.
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Last returns the most recent entry.
func (s *Sink) Last() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of entries.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops all entries and resets the marker.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.current = LevelNone
}
