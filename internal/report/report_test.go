// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLineWriter_SplitsLines(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	w := NewLineWriter(rec, "api/compose.yml", log.InfoLevel)

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\r\nthird"))
	if got := rec.Messages(log.InfoLevel); !slices.Equal(got, []string{"first", "second"}) {
		t.Fatalf("before Flush: %q", got)
	}

	w.Flush()
	w.Flush()
	got := rec.Entries()
	if len(got) != 3 || got[2].Message != "third" {
		t.Fatalf("after Flush: %+v", got)
	}
	for _, e := range got {
		if e.Label != "api/compose.yml" {
			t.Errorf("entry %q has label %q", e.Message, e.Label)
		}
	}
}

func TestLineWriter_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	w := NewLineWriter(rec, "x", log.InfoLevel)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				fmt.Fprintf(w, "writer-%d line-%d\n", i, j)
			}
		}()
	}
	wg.Wait()

	if rec.Len() != 400 {
		t.Fatalf("recorded %d entries, want 400", rec.Len())
	}
	for _, e := range rec.Entries() {
		if !strings.HasPrefix(e.Message, "writer-") || strings.Contains(e.Message, "\n") {
			t.Fatalf("torn line %q", e.Message)
		}
	}
}

func TestWithLabel(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	r := WithLabel(rec, "web")
	Warn(r, "no match for %s", "x")
	r.Log(Entry{Level: log.InfoLevel, Message: "own", Label: "other"})

	got := rec.Entries()
	if got[0].Label != "web" || got[0].Message != "no match for x" || got[0].Level != log.WarnLevel {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1].Label != "other" {
		t.Errorf("explicit label overwritten: %+v", got[1])
	}
}

func TestLogger_LevelsAndLabels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&buf, false, PlainStyles())
	Debug(l, "hidden")
	Info(l, "shown")
	l.Log(Entry{Level: log.InfoLevel, Message: "from child", Label: "svc/compose.yml"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output shown without verbose: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info output missing: %q", out)
	}
	if !strings.Contains(out, "svc/compose.yml") || !strings.Contains(out, "from child") {
		t.Errorf("labeled output missing: %q", out)
	}

	buf.Reset()
	verbose := NewLogger(&buf, true, PlainStyles())
	Debug(verbose, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug output missing in verbose mode: %q", buf.String())
	}
}

func TestStylesLabel_Stable(t *testing.T) {
	t.Parallel()

	s := DefaultStyles()
	if s.Label("a/compose.yml") != s.Label("a/compose.yml") {
		t.Error("label rendering is not deterministic")
	}
	if got := PlainStyles().Label("plain"); got != "plain" {
		t.Errorf("plain label = %q", got)
	}
}
