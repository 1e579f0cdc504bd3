// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

type (
	// Entry is one line of user-visible output.
	Entry struct {
		Level   log.Level
		Message string
		// Label identifies the origin of the line, usually a compose file.
		// Empty for messages about the run as a whole.
		Label string
	}

	// Reporter receives every line of user-visible output. Implementations must
	// be safe for concurrent use.
	Reporter interface {
		Log(e Entry)
	}

	// Logger is the terminal Reporter backed by charmbracelet/log.
	Logger struct {
		base   *log.Logger
		styles *Styles

		mu       sync.Mutex
		prefixed map[string]*log.Logger
	}

	// Recorder is a Reporter that keeps every entry in memory.
	Recorder struct {
		mu      sync.Mutex
		entries []Entry
	}

	labeled struct {
		r     Reporter
		label string
	}

	discard struct{}

	// lockedWriter serializes writes from loggers derived with WithPrefix,
	// which do not share a mutex with their parent.
	lockedWriter struct {
		mu sync.Mutex
		w  io.Writer
	}
)

// Discard is a Reporter that drops every entry.
var Discard Reporter = discard{}

// NewLogger writes entries to w. Debug entries are shown only when verbose.
func NewLogger(w io.Writer, verbose bool, styles *Styles) *Logger {
	if styles == nil {
		styles = DefaultStyles()
	}
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	base := log.NewWithOptions(&lockedWriter{w: w}, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	base.SetStyles(styles.Log)
	return &Logger{base: base, styles: styles, prefixed: make(map[string]*log.Logger)}
}

// Log writes e, prefixed with its styled label.
func (l *Logger) Log(e Entry) {
	l.forLabel(e.Label).Log(e.Level, e.Message)
}

func (l *Logger) forLabel(label string) *log.Logger {
	if label == "" {
		return l.base
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if pl, ok := l.prefixed[label]; ok {
		return pl
	}
	pl := l.base.WithPrefix(l.styles.Label(label))
	l.prefixed[label] = pl
	return pl
}

// Log appends e.
func (r *Recorder) Log(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a snapshot of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Messages returns the messages recorded at level, in order.
func (r *Recorder) Messages(level log.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// WithLabel returns a Reporter that stamps label on entries that have none.
func WithLabel(r Reporter, label string) Reporter {
	return labeled{r: r, label: label}
}

func (l labeled) Log(e Entry) {
	if e.Label == "" {
		e.Label = l.label
	}
	l.r.Log(e)
}

func (discard) Log(Entry) {}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// Debug logs a formatted message at debug level.
func Debug(r Reporter, format string, args ...any) {
	r.Log(Entry{Level: log.DebugLevel, Message: fmt.Sprintf(format, args...)})
}

// Info logs a formatted message at info level.
func Info(r Reporter, format string, args ...any) {
	r.Log(Entry{Level: log.InfoLevel, Message: fmt.Sprintf(format, args...)})
}

// Warn logs a formatted message at warn level.
func Warn(r Reporter, format string, args ...any) {
	r.Log(Entry{Level: log.WarnLevel, Message: fmt.Sprintf(format, args...)})
}

// Error logs a formatted message at error level.
func Error(r Reporter, format string, args ...any) {
	r.Log(Entry{Level: log.ErrorLevel, Message: fmt.Sprintf(format, args...)})
}
