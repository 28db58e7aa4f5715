package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/config"
	apphttp "github.com/handiism/music-universe/internal/http"
	"github.com/handiism/music-universe/internal/logging"
	"github.com/handiism/music-universe/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runUI starts the explorer; replaced in tests.
var runUI = tui.Run

func run(args []string) error {
	flags := flag.NewFlagSet("musicverse-tui", flag.ContinueOnError)
	var (
		configFlag  = flags.String("config", "", "Path to settings file")
		baseURLFlag = flags.String("base-url", "", "Base URL the catalog files are resolved against")
		logFlag     = flags.String("log-file", "", "Write logs to this file (default: discarded)")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	path := *configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.LoadWithEnv(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *baseURLFlag != "" {
		settings.BaseURL = *baseURLFlag
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	logger := logging.Discard()
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		if logger, err = logging.New(f, settings.LogLevel, settings.LogFormat); err != nil {
			return err
		}
	}

	sources, err := settings.ToSources()
	if err != nil {
		logger.Error("invalid catalog source", "base_url", settings.BaseURL, "error", err)
		return err
	}
	fetcher := apphttp.NewCandidateFetcher(apphttp.NewClient(settings.UserAgent), settings.ToPolicy(), logger)
	store := catalog.NewStore(fetcher, catalog.NewCache(), sources, catalog.Options{
		Logger:    logger,
		Positions: catalog.NewPositionAssigner(settings.PositionRange, nil),
		MaxAge:    settings.MaxAge(),
	})

	return runUI(store)
}
