package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeanpaul/patientrec/internal/config"
	"github.com/jeanpaul/patientrec/internal/logging"
	"github.com/jeanpaul/patientrec/internal/shell"
	"github.com/jeanpaul/patientrec/internal/store"
	"github.com/jeanpaul/patientrec/internal/tui"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configFlag := flag.String("config", "", "Path to a config file")
	dataFlag := flag.String("data", "", "Patient data file (overrides config)")
	tuiFlag := flag.Bool("tui", false, "Run the full-screen interface instead of the line menu")
	noSplashFlag := flag.Bool("no-splash", false, "Skip the loading animation")
	initConfigFlag := flag.String("init-config", "", "Write a default config file to the given path and exit")
	versionFlag := flag.Bool("version", false, "Print version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("patientrec %s\n", version)
		os.Exit(0)
	}

	if *initConfigFlag != "" {
		if err := config.WriteDefault(*initConfigFlag); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Wrote default config to %s\n", *initConfigFlag)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatal("config error: %s", err)
	}
	if *dataFlag != "" {
		cfg.DataFile = *dataFlag
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fatal("logging: %v", err)
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("data_file", cfg.DataFile),
		zap.Bool("tui", *tuiFlag),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	styles := tui.NewStyles(cfg.Theme, nil)
	fmt.Println(styles.Banner.Render(tui.Banner))

	if cfg.Splash && !*noSplashFlag {
		p := tea.NewProgram(tui.NewSplash(styles), tea.WithInput(nil), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			log.Warn("splash failed", zap.Error(err))
		}
	}

	st := store.New(log)
	if err := run(ctx, st, cfg, *tuiFlag, log); err != nil {
		log.Error("exited with error", zap.Error(err))
		fatal("%v", err)
	}
	log.Info("stopped", zap.Int("records", st.Len()), zap.Bool("unsaved", st.Dirty()))
}

func run(ctx context.Context, st *store.RecordStore, cfg *config.Config, fullScreen bool, log *zap.Logger) error {
	if !fullScreen {
		sh := shell.New(st, os.Stdin, os.Stdout, shell.Options{
			DataFile:       cfg.DataFile,
			AutosaveOnExit: cfg.AutosaveOnExit,
			LoadOnStart:    true,
			Theme:          cfg.Theme,
		}, log)
		return sh.Run(ctx)
	}

	if _, err := st.Load(cfg.DataFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
	}
	m := tui.NewModel(st, tui.Options{
		DataFile:       cfg.DataFile,
		AutosaveOnExit: cfg.AutosaveOnExit,
		Theme:          cfg.Theme,
	}, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		fmt.Println("\nProgram interrupted. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Exiting Hospital Record System. Goodbye!")
	return nil
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.NewStyles("green", nil).Error.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	fmt.Print(`
patientrec - hospital patient record system for the terminal

USAGE:
  patientrec [flags]

FLAGS:
  -config <path>        Use a specific config file
  -data <path>          Patient data file (default patients.json)
  -tui                  Full-screen interface
  -no-splash            Skip the loading animation
  -init-config <path>   Write a default config file and exit
  -version              Show version
  -h, -help             Show this help

ENVIRONMENT:
  PATIENTREC_DATA_FILE, PATIENTREC_LOG_FILE, PATIENTREC_LOG_LEVEL,
  PATIENTREC_THEME, PATIENTREC_SPLASH, PATIENTREC_AUTOSAVE_ON_EXIT
  A .env file in the working directory is read first.
`)
}
