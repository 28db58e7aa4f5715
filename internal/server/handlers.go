package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/handiism/music-universe/internal/archive"
	"github.com/handiism/music-universe/internal/audio"
	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/cover"
	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/search"
	"github.com/handiism/music-universe/internal/tags"
)

type handlers struct {
	store  *catalog.Store
	covers *cover.Service

	// searcher is rebuilt when the snapshot changes.
	mu           sync.Mutex
	searchedView *catalog.View
	searcher     *search.Searcher
}

func newHandlers(store *catalog.Store, covers *cover.Service) *handlers {
	return &handlers{store: store, covers: covers}
}

// view loads the snapshot, writing the error response on failure.
func (h *handlers) view(w http.ResponseWriter, r *http.Request) (*catalog.View, bool) {
	v, err := h.store.Load(r.Context())
	if err != nil {
		writeLoadError(w, r, err)
		return nil, false
	}
	return v, true
}

func (h *handlers) searcherFor(v *catalog.View) *search.Searcher {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.searchedView != v {
		h.searchedView = v
		h.searcher = search.New(v.Tracks)
	}
	return h.searcher
}

// HealthResponse reports whether a snapshot is available.
type HealthResponse struct {
	Status   string     `json:"status"`
	Loaded   bool       `json:"loaded"`
	Tracks   int        `json:"tracks"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if v := h.store.Cache().View(); v != nil {
		resp.Loaded = true
		resp.Tracks = len(v.Tracks)
		resp.LoadedAt = &v.LoadedAt
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// CatalogResponse is the full snapshot.
type CatalogResponse struct {
	Tracks     []model.Track         `json:"tracks"`
	Aggregates model.AggregateCounts `json:"aggregates"`
	Tags       []tags.TagCount       `json:"tags"`
	LoadedAt   time.Time             `json:"loaded_at"`
}

func newCatalogResponse(v *catalog.View) CatalogResponse {
	return CatalogResponse{
		Tracks:     v.Tracks,
		Aggregates: v.Aggregates,
		Tags:       v.Tags.Ranked(),
		LoadedAt:   v.LoadedAt,
	}
}

func (h *handlers) catalog(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, newCatalogResponse(v))
}

func (h *handlers) refetch(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Refetch(r.Context())
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCatalogResponse(v))
}

// TagsResponse lists every tag, most used first.
type TagsResponse struct {
	Tags []tags.TagCount `json:"tags"`
}

func (h *handlers) tags(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, TagsResponse{Tags: v.Tags.Ranked()})
}

// TagResponse describes one tag.
type TagResponse struct {
	Tag     string        `json:"tag"`
	Count   int           `json:"count"`
	Related []string      `json:"related"`
	Tracks  []model.Track `json:"tracks"`
}

func (h *handlers) tag(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	tag := chi.URLParam(r, "tag")
	count := v.Tags.Count(tag)
	if count == 0 {
		writeError(w, r, http.StatusNotFound, "unknown tag")
		return
	}
	writeJSON(w, r, http.StatusOK, TagResponse{
		Tag:     tag,
		Count:   count,
		Related: v.Tags.Related(tag),
		Tracks:  v.TracksWithTag(tag),
	})
}

func (h *handlers) playlist(w http.ResponseWriter, r *http.Request) {
	format, err := audio.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	tag := chi.URLParam(r, "tag")
	if v.Tags.Count(tag) == 0 {
		writeError(w, r, http.StatusNotFound, "unknown tag")
		return
	}

	content := audio.NewPlaylistCreator(format, true).CreatePlaylist(tag, v.TracksWithTag(tag))
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write([]byte(content))
}

// SearchResponse holds local search results.
type SearchResponse struct {
	Results     []model.Track `json:"results"`
	ExactArtist []model.Track `json:"exact_artist,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	s := h.searcherFor(v)
	q := search.Query{
		Text:   r.URL.Query().Get("q"),
		Artist: r.URL.Query().Get("artist"),
	}
	writeJSON(w, r, http.StatusOK, SearchResponse{
		Results:     s.Search(q),
		ExactArtist: s.ExactArtist(q.Text),
		Suggestions: s.Suggestions(q.Text),
	})
}

func (h *handlers) artists(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	s := h.searcherFor(v)
	list := s.Artists()
	if r.URL.Query().Get("sort") == "name" {
		list = s.ArtistsByName()
	}
	writeJSON(w, r, http.StatusOK, map[string][]search.ArtistCount{"artists": list})
}

func (h *handlers) archive(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, archive.Build(v.Tracks, time.Local, time.Now()))
}

func (h *handlers) wordCloud(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, search.BuildWordCloud(v.Tracks))
}

func (h *handlers) track(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	t, found := v.Track(model.TrackID(chi.URLParam(r, "id")))
	if !found {
		writeError(w, r, http.StatusNotFound, "unknown track")
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (h *handlers) trackCover(w http.ResponseWriter, r *http.Request) {
	if h.covers == nil {
		writeError(w, r, http.StatusNotFound, "covers disabled")
		return
	}
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	t, found := v.Track(model.TrackID(chi.URLParam(r, "id")))
	if !found {
		writeError(w, r, http.StatusNotFound, "unknown track")
		return
	}

	mobile, _ := strconv.ParseBool(r.URL.Query().Get("mobile"))
	thumb, err := h.covers.TrackThumbnail(r.Context(), t, mobile)
	if err != nil {
		writeCoverError(w, r, err)
		return
	}
	writeThumbnail(w, thumb)
}

func (h *handlers) cover(w http.ResponseWriter, r *http.Request) {
	if h.covers == nil {
		writeError(w, r, http.StatusNotFound, "covers disabled")
		return
	}
	// Only the cover directory is served here; remote covers are reachable
	// through their track.
	name := chi.URLParam(r, "*")
	if model.IsAbsoluteURL(name) {
		writeError(w, r, http.StatusBadRequest, "invalid cover name")
		return
	}
	thumb, err := h.covers.Thumbnail(r.Context(), name)
	if err != nil {
		writeCoverError(w, r, err)
		return
	}
	writeThumbnail(w, thumb)
}

func writeThumbnail(w http.ResponseWriter, thumb []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(thumb)
}
