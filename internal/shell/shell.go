// Package shell is the line-oriented numbered menu over a RecordStore. It
// reads from any io.Reader, so it runs the same on a terminal, a pipe or a
// test fixture.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeanpaul/patientrec/internal/store"
	"github.com/jeanpaul/patientrec/internal/tui"
)

// Options configures a Shell.
type Options struct {
	DataFile       string
	AutosaveOnExit bool
	LoadOnStart    bool
	Theme          string
	Width          int
}

type entry struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

// Shell drives a RecordStore from numbered menu choices.
type Shell struct {
	store   *store.RecordStore
	in      *lineReader
	out     io.Writer
	opts    Options
	styles  tui.Styles
	log     *zap.Logger
	entries []entry
}

func New(st *store.RecordStore, in io.Reader, out io.Writer, opts Options, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DataFile == "" {
		opts.DataFile = "patients.json"
	}
	s := &Shell{
		store:  st,
		in:     newLineReader(in),
		out:    out,
		opts:   opts,
		styles: tui.NewStyles(opts.Theme, lipgloss.NewRenderer(out)),
		log:    log,
	}
	s.entries = []entry{
		{"1", "Add New Patient Record", s.add},
		{"2", "View All Records", s.view},
		{"3", "Search for a Patient", s.search},
		{"4", "Update a Patient Record", s.update},
		{"5", "Delete a Patient Record", s.delete},
		{"6", "Calculate Summary Stats", s.stats},
		{"7", "Save to File", s.save},
		{"8", "Load from File", s.load},
		{"9", "Clear All Data", s.clear},
		{"10", "Help", s.help},
		{"11", "Sort Records", s.sort},
		{"12", "Export Records", s.export},
		{"13", "Show Unsaved Changes", s.diff},
		{"0", "Exit", nil},
	}
	return s
}

// Run loops over menu choices until the user exits, input ends or ctx is
// cancelled. Operation failures are reported and the loop continues; a
// panic inside an operation ends the loop with an error.
func (s *Shell) Run(ctx context.Context) error {
	defer s.in.close()

	if s.opts.LoadOnStart {
		s.loadFrom(s.opts.DataFile)
	}

	for {
		s.printMenu()
		choice, err := s.ask(ctx, "Select an option: ")
		if err != nil {
			return s.quit(ctx)
		}
		if choice == "0" {
			return s.quit(ctx)
		}

		e, ok := s.lookup(choice)
		if !ok {
			s.println(s.styles.Error.Render("Invalid option. Please select a valid menu number."))
			continue
		}
		if err := s.dispatch(ctx, e); err != nil {
			if errors.Is(err, errQuit) {
				return s.quit(ctx)
			}
			return err
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, e entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unexpected fault", zap.String("option", e.key), zap.Any("panic", r), zap.Stack("stack"))
			s.println(s.styles.Error.Render(fmt.Sprintf("Unexpected error: %v", r)))
			err = fmt.Errorf("unexpected error in %q: %v", e.label, r)
		}
	}()
	s.log.Debug("menu option", zap.String("option", e.key))
	return e.run(ctx)
}

func (s *Shell) lookup(choice string) (entry, bool) {
	for _, e := range s.entries {
		if e.key == choice && e.run != nil {
			return e, true
		}
	}
	return entry{}, false
}

func (s *Shell) quit(ctx context.Context) error {
	if ctx.Err() != nil {
		s.println("\nProgram interrupted. Exiting.")
	}
	if s.store.Dirty() {
		if s.opts.AutosaveOnExit {
			s.saveTo(s.opts.DataFile)
		} else {
			s.println(s.styles.Warn.Render("Warning: unsaved changes were discarded."))
		}
	}
	s.println(s.styles.Banner.Render("Exiting Hospital Record System. Goodbye!"))
	return nil
}

func (s *Shell) printMenu() {
	var b strings.Builder
	b.WriteString("\n" + s.styles.Title.Render("Main Menu:") + "\n")
	for _, e := range s.entries {
		b.WriteString(s.styles.MenuKey.Render(e.key+".") + " " + s.styles.MenuItem.Render(e.label) + "\n")
	}
	fmt.Fprint(s.out, b.String())
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// ask prints prompt and returns the next trimmed line.
func (s *Shell) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, s.styles.Prompt.Render(prompt))
	line, err := s.in.next(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askNonEmpty re-prompts until a non-blank line arrives.
func (s *Shell) askNonEmpty(ctx context.Context, prompt string) (string, error) {
	for {
		v, err := s.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		s.println(s.styles.Error.Render("Input cannot be empty. Please try again."))
	}
}

// askInt re-prompts until an integer within [lo, hi] arrives.
func (s *Shell) askInt(ctx context.Context, prompt string, lo, hi int) (int, error) {
	for {
		v, err := s.ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			s.println(s.styles.Error.Render("Invalid integer. Please try again."))
			continue
		}
		if n < lo || n > hi {
			s.println(s.styles.Error.Render(fmt.Sprintf("Input must be between %d and %d.", lo, hi)))
			continue
		}
		return n, nil
	}
}

// confirmer asks prompt with the given answer hint. A read failure counts
// as a refusal and is kept in *failed so the caller can stop.
func (s *Shell) confirmer(ctx context.Context, hint string, failed *error) store.Confirmer {
	return store.ConfirmFunc(func(prompt string) bool {
		ans, err := s.ask(ctx, prompt+" ("+hint+"): ")
		if err != nil {
			*failed = err
			return false
		}
		return isYes(ans)
	})
}

func isYes(ans string) bool {
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes":
		return true
	}
	return false
}
