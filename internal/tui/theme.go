package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme is built from. Empty colours
// render without colour, which is what the plain theme relies on.
type Palette struct {
	Primary lipgloss.Color
	Bright  lipgloss.Color
	Dim     lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Warn    lipgloss.Color
	Error   lipgloss.Color
	Ink     lipgloss.Color
}

var palettes = map[string]Palette{
	"green": {
		Primary: lipgloss.Color("#00FF41"),
		Bright:  lipgloss.Color("#39FF14"),
		Dim:     lipgloss.Color("#008F11"),
		Accent:  lipgloss.Color("#00D4AA"),
		Text:    lipgloss.Color("#e0e0e0"),
		Warn:    lipgloss.Color("#FFD700"),
		Error:   lipgloss.Color("#FF4136"),
		Ink:     lipgloss.Color("#0D0208"),
	},
	"amber": {
		Primary: lipgloss.Color("#FFB000"),
		Bright:  lipgloss.Color("#FFCC00"),
		Dim:     lipgloss.Color("#A36E00"),
		Accent:  lipgloss.Color("#FF8C42"),
		Text:    lipgloss.Color("#F5E6C8"),
		Warn:    lipgloss.Color("#FFE066"),
		Error:   lipgloss.Color("#FF4136"),
		Ink:     lipgloss.Color("#1A1000"),
	},
	"plain": {},
}

func paletteFor(theme string) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes["green"]
}

// Styles is every style the shell and the TUI render with.
type Styles struct {
	Banner     lipgloss.Style
	Title      lipgloss.Style
	MenuKey    lipgloss.Style
	MenuItem   lipgloss.Style
	Prompt     lipgloss.Style
	Success    lipgloss.Style
	Error      lipgloss.Style
	Warn       lipgloss.Style
	Help       lipgloss.Style
	Separator  lipgloss.Style
	Header     lipgloss.Style
	Cell       lipgloss.Style
	Confirm    lipgloss.Style
	ConfirmBox lipgloss.Style
	StatusBar  lipgloss.Style
	Spinner    lipgloss.Style
	Box        lipgloss.Style
}

// NewStyles builds the styles for theme on renderer r. Unknown themes
// fall back to green; a nil renderer means the default one.
func NewStyles(theme string, r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	p := paletteFor(theme)

	return Styles{
		Banner:    r.NewStyle().Foreground(p.Primary).Bold(true),
		Title:     r.NewStyle().Foreground(p.Bright).Bold(true),
		MenuKey:   r.NewStyle().Foreground(p.Bright).Bold(true),
		MenuItem:  r.NewStyle().Foreground(p.Text),
		Prompt:    r.NewStyle().Foreground(p.Accent),
		Success:   r.NewStyle().Foreground(p.Primary),
		Error:     r.NewStyle().Foreground(p.Error).Bold(true),
		Warn:      r.NewStyle().Foreground(p.Warn),
		Help:      r.NewStyle().Foreground(p.Dim),
		Separator: r.NewStyle().Foreground(p.Dim),
		Header:    r.NewStyle().Foreground(p.Bright).Bold(true),
		Cell:      r.NewStyle().Foreground(p.Text),
		Confirm: r.NewStyle().
			Foreground(p.Warn).
			Bold(true),
		ConfirmBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Warn).
			Padding(0, 1),
		StatusBar: r.NewStyle().
			Background(p.Dim).
			Foreground(p.Ink).
			Bold(true).
			Padding(0, 1),
		Spinner: r.NewStyle().Foreground(p.Bright),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Dim).
			Padding(0, 1),
	}
}

// LoadingSpinner is the classic pipe animation shown while starting up.
var LoadingSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

const Banner = "Welcome to the Hospital Patient Record System"
