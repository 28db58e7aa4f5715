package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/cover"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store  *catalog.Store
	Covers *cover.Service

	// DataDir is served under /data. Empty disables static files.
	DataDir string

	Logger *slog.Logger
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := newHandlers(deps.Store, deps.Covers)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", h.catalog)
		r.Post("/refetch", h.refetch)

		r.Get("/tags", h.tags)
		r.Get("/tags/{tag}", h.tag)
		r.Get("/tags/{tag}/playlist.{format}", h.playlist)

		r.Get("/search", h.search)
		r.Get("/artists", h.artists)
		r.Get("/archive", h.archive)
		r.Get("/wordcloud", h.wordCloud)

		r.Get("/tracks/{id}", h.track)
		r.Get("/tracks/{id}/cover", h.trackCover)
	})

	r.Get("/covers/*", h.cover)

	if deps.DataDir != "" {
		r.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(deps.DataDir))))
	}

	return r
}
