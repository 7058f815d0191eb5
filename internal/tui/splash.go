package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const splashFrames = 15

// Splash is the start-up loading animation. It quits on its own after a
// fixed number of frames, or early on any key.
type Splash struct {
	spinner spinner.Model
	styles  Styles
	frames  int
	done    bool
}

func NewSplash(styles Styles) Splash {
	sp := spinner.New()
	sp.Spinner = LoadingSpinner
	sp.Style = styles.Spinner
	return Splash{spinner: sp, styles: styles}
}

func (s Splash) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s Splash) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		s.done = true
		return s, tea.Quit
	case spinner.TickMsg:
		s.frames++
		if s.frames >= splashFrames {
			s.done = true
			return s, tea.Quit
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s Splash) View() string {
	if s.done {
		return s.styles.Success.Render("Loading complete!") + "\n"
	}
	return "Loading " + s.spinner.View() + "\n"
}

// Done reports whether the animation has finished.
func (s Splash) Done() bool { return s.done }
