package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/config"
	apphttp "github.com/handiism/music-universe/internal/http"
	"github.com/handiism/music-universe/internal/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	logFormat  string
}

var (
	globals  globalOptions
	settings *config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "musicverse",
	Short:        "musicverse - browse a tagged music collection",
	Long:         "musicverse loads a music catalog, indexes its style tags and serves it over HTTP or in the terminal.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.configPath, "config", "", "Path to settings file (default: XDG config home)")
	flags.StringVar(&globals.baseURL, "base-url", "", "Base URL the catalog files are resolved against")
	flags.StringVar(&globals.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&globals.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTagsCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newPlaylistCmd())
	rootCmd.AddCommand(newImportCmd())
}

// setup loads settings (file, then environment, then flags) and the logger.
func setup(cmd *cobra.Command) error {
	path := globals.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	s, err := config.LoadWithEnv(path)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		s.BaseURL = globals.baseURL
	}
	if flags.Changed("log-level") {
		s.LogLevel = globals.logLevel
	}
	if flags.Changed("log-format") {
		s.LogFormat = globals.logFormat
	}
	if err := s.Validate(); err != nil {
		return err
	}

	l, err := logging.New(os.Stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(l)

	settings, logger = s, l
	return nil
}

// newStore builds a catalog store that fetches from the configured source.
func newStore() (*catalog.Store, error) {
	sources, err := settings.ToSources()
	if err != nil {
		return nil, err
	}

	client := apphttp.NewClient(settings.UserAgent)
	fetcher := apphttp.NewCandidateFetcher(client, settings.ToPolicy(), logger)

	return catalog.NewStore(fetcher, catalog.NewCache(), sources, catalog.Options{
		Logger:    logger,
		Positions: catalog.NewPositionAssigner(settings.PositionRange, nil),
		MaxAge:    settings.MaxAge(),
	}), nil
}

// loadView loads the catalog once for a one-shot command.
func loadView(cmd *cobra.Command) (*catalog.View, error) {
	store, err := newStore()
	if err != nil {
		return nil, err
	}
	view, err := store.Load(cmd.Context())
	if err != nil {
		if catalog.IsRetryable(err) {
			return nil, fmt.Errorf("%w (check --base-url and try again)", err)
		}
		return nil, err
	}
	return view, nil
}
