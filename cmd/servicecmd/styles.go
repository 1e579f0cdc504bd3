// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/servicecmd/servicecmd/internal/config"
	"github.com/servicecmd/servicecmd/internal/report"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Base styles built from the shared report palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(report.ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(report.ColorMuted)

	// CmdStyle is for command names, keys and paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(report.ColorHighlight)

	// tableHeaderStyle is for the header row of the services table.
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(report.ColorPrimary).
				Padding(0, 1)

	// tableCellStyle pads every table cell.
	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// isTerminal reports whether w is a terminal and colors are not disabled.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// logStyles picks colored log styles for terminals and plain ones otherwise.
func logStyles(w io.Writer) *report.Styles {
	if isTerminal(w) {
		return report.DefaultStyles()
	}
	return report.PlainStyles()
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(w io.Writer, scheme config.ColorScheme) string {
	if !isTerminal(w) {
		return "notty"
	}
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
