// SPDX-License-Identifier: MPL-2.0

package report

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Shared palette for CLI output.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// labelPalette cycles through distinguishable colors so that interleaved
// output of concurrent children stays readable.
var labelPalette = []lipgloss.Color{
	"#3B82F6", "#10B981", "#F59E0B", "#EC4899", "#8B5CF6", "#14B8A6", "#F97316", "#84CC16",
}

// Styles bundles the lipgloss styles used by Logger.
type Styles struct {
	Log     *log.Styles
	label   lipgloss.Style
	palette []lipgloss.Color
}

// DefaultStyles returns the colored styles.
func DefaultStyles() *Styles {
	ls := log.DefaultStyles()
	ls.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(ColorError)
	ls.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(ColorWarning)
	ls.Levels[log.InfoLevel] = lipgloss.NewStyle().SetString("INFO").Foreground(ColorSuccess)
	ls.Levels[log.DebugLevel] = lipgloss.NewStyle().SetString("DEBUG").Foreground(ColorMuted)
	return &Styles{
		Log:     ls,
		label:   lipgloss.NewStyle().Bold(true),
		palette: labelPalette,
	}
}

// PlainStyles returns styles without colors, for non-terminal output.
func PlainStyles() *Styles {
	ls := log.DefaultStyles()
	for lvl := range ls.Levels {
		ls.Levels[lvl] = ls.Levels[lvl].UnsetForeground().UnsetBold()
	}
	return &Styles{Log: ls, label: lipgloss.NewStyle()}
}

// Label renders name in a color derived from its hash, so the same file keeps
// its color for the whole run.
func (s *Styles) Label(name string) string {
	if len(s.palette) == 0 {
		return s.label.Render(name)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	color := s.palette[int(h.Sum32()%uint32(len(s.palette)))]
	return s.label.Foreground(color).Render(name)
}
