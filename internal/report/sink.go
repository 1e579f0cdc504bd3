// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LineWriter is an io.Writer that forwards complete lines to a Reporter.
// A trailing partial line is held back until the next Write or Flush.
// It is safe for concurrent use, so a child's stdout and stderr may share one.
type LineWriter struct {
	r     Reporter
	label string
	level log.Level

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLineWriter returns a LineWriter that reports each line at level with label.
func NewLineWriter(r Reporter, label string, level log.Level) *LineWriter {
	return &LineWriter{r: r, label: label, level: level}
}

// Write buffers p and reports every line it completes.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(line)
	}
	return len(p), nil
}

// Flush reports the pending partial line, if any.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *LineWriter) emit(line string) {
	w.r.Log(Entry{Level: w.level, Message: strings.TrimRight(line, "\r\n"), Label: w.label})
}
