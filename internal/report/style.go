package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fyrsmithlabs/contentgate/internal/content"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	colorCritical = lipgloss.Color("#E74C3C")
	colorMajor    = lipgloss.Color("#E67E22")
	colorMinor    = lipgloss.Color("#F4D03F")
	colorPass     = lipgloss.Color("#2CD7C7")
	colorMuted    = lipgloss.Color("#7F8C8D")
)

type styles struct {
	severity map[content.Severity]lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
}

// newStyles binds the palette to a renderer for w. ColorAuto leaves color
// detection to the renderer, which disables color for non-terminals.
func newStyles(w io.Writer, mode string) (styles, error) {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAuto, "":
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		return styles{}, fmt.Errorf("unknown color mode %q", mode)
	}

	return styles{
		severity: map[content.Severity]lipgloss.Style{
			content.SeverityCritical:      r.NewStyle().Foreground(colorCritical).Bold(true),
			content.SeverityMajor:         r.NewStyle().Foreground(colorMajor),
			content.SeverityMinor:         r.NewStyle().Foreground(colorMinor),
			content.SeverityInformational: r.NewStyle().Foreground(colorMuted),
		},
		pass:   r.NewStyle().Foreground(colorPass).Bold(true),
		fail:   r.NewStyle().Foreground(colorCritical).Bold(true),
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(colorMuted),
	}, nil
}

func (s styles) status(passed bool, text string) string {
	if passed {
		return s.pass.Render(text)
	}
	return s.fail.Render(text)
}
