package client

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// styles are the lipgloss styles of one client. Each connection has its own
// renderer so color support follows that connection's terminal.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	hint   lipgloss.Style
	prompt lipgloss.Style
	warn   lipgloss.Style
	lives  lipgloss.Style
	reward lipgloss.Style
	panel  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("51")),
		header: r.NewStyle().Bold(true),
		hint:   r.NewStyle().Faint(true),
		prompt: r.NewStyle().Bold(true).Foreground(lipgloss.Color("226")),
		warn:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		lives:  r.NewStyle().Foreground(lipgloss.Color("203")),
		reward: r.NewStyle().Bold(true).Reverse(true).Padding(0, 1),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2),
	}
}

// ProfileFor picks a color profile from a remote terminal's TERM and
// COLORTERM values, for sessions where the output is not a local TTY.
func ProfileFor(term, colorTerm string) termenv.Profile {
	switch {
	case colorTerm == "truecolor" || colorTerm == "24bit":
		return termenv.TrueColor
	case strings.Contains(term, "256color"):
		return termenv.ANSI256
	case term == "" || term == "dumb":
		return termenv.Ascii
	default:
		return termenv.ANSI
	}
}

// NewRenderer creates a lipgloss renderer for w with an explicit profile.
func NewRenderer(w io.Writer, profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return r
}
