package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/cover"
	apphttp "github.com/handiism/music-universe/internal/http"
	"github.com/handiism/music-universe/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		addr    string
		dataDir string
		noWarm  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API and data files over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				settings.ListenAddr = addr
			}
			if cmd.Flags().Changed("data-dir") {
				settings.DataDir = dataDir
			}

			store, err := newStore()
			if err != nil {
				return err
			}
			covers := cover.NewService(settings.CoverDir, settings.ThumbnailMaxSize, apphttp.NewClient(settings.UserAgent), logger)
			covers.SetRemoteTimeout(settings.ToPolicy().Timeout)

			ctx := cmd.Context()

			srv := &http.Server{
				Addr: settings.ListenAddr,
				Handler: server.NewRouter(&server.Deps{
					Store:   store,
					Covers:  covers,
					DataDir: settings.DataDir,
					Logger:  logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", srv.Addr, "data_dir", settings.DataDir)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			if !noWarm {
				go warm(ctx, store)
			}

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides settings)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory served under /data (overrides settings)")
	cmd.Flags().BoolVar(&noWarm, "no-warm", false, "Do not load the catalog until the first request")

	return cmd
}

// warm loads the catalog in the background so the first request is fast.
// The server may serve its own data files, so the first attempt can race
// the listener; a failure here is only logged.
func warm(ctx context.Context, store *catalog.Store) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return
	}
	if _, err := store.Load(ctx); err != nil && !catalog.IsCancelled(err) {
		logger.Warn("catalog warm-up failed", "error", err)
	}
}
