package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/handiism/music-universe/internal/catalog"
	"github.com/handiism/music-universe/internal/cover"
	apphttp "github.com/handiism/music-universe/internal/http"
	"github.com/handiism/music-universe/internal/logging"
	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/tags"
)

const testTracks = `[
	{"id": 1, "title": "One Summer's Day", "artist": "Joe Hisaishi", "album": "Spirited Away", "note": "原声带, 钢琴", "previewUrl": "https://example.com/p/1.m4a", "date": "2023年05月15日 14:30"},
	{"id": 2, "title": "Strobe", "artist": "deadmau5", "album": "For Lack", "note": "电音", "date": "2024-01-02"},
	{"id": 3, "title": "Merry-Go-Round", "artist": "Joe Hisaishi", "album": "Howl", "note": "OST", "previewUrl": "https://example.com/p/3.m4a"}
]`

const testAggregates = `{"artist_counts": {"Joe Hisaishi": 2, "deadmau5": 1}, "style_counts": {"原声": 2}}`

var testSources = catalog.Sources{Tracks: []string{"tracks"}, Aggregates: []string{"aggregates"}}

// fetchFunc adapts a function to catalog.Fetcher.
type fetchFunc func(ctx context.Context, candidates []string) (json.RawMessage, error)

func (f fetchFunc) FetchJSON(ctx context.Context, candidates []string) (json.RawMessage, error) {
	return f(ctx, candidates)
}

func staticFetcher(tracks string) fetchFunc {
	return func(_ context.Context, candidates []string) (json.RawMessage, error) {
		if candidates[0] == "tracks" {
			return json.RawMessage(tracks), nil
		}
		return json.RawMessage(testAggregates), nil
	}
}

func newTestServer(t *testing.T, fetcher catalog.Fetcher, dataDir string) *httptest.Server {
	t.Helper()
	store := catalog.NewStore(fetcher, catalog.NewCache(), testSources, catalog.Options{Logger: logging.Discard()})
	srv := httptest.NewServer(NewRouter(&Deps{Store: store, DataDir: dataDir, Logger: logging.Discard()}))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestRouter_Catalog(t *testing.T) {
	srv := newTestServer(t, staticFetcher(testTracks), "")

	var health HealthResponse
	getJSON(t, srv.URL+"/healthz", &health)
	if health.Loaded {
		t.Error("catalog should not be loaded before the first request")
	}

	var cat CatalogResponse
	if code := getJSON(t, srv.URL+"/api/catalog", &cat); code != http.StatusOK {
		t.Fatalf("GET /api/catalog status = %d", code)
	}
	if len(cat.Tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(cat.Tracks))
	}
	for _, tr := range cat.Tracks {
		if tr.Position == nil {
			t.Errorf("track %s has no position", tr.ID)
		}
	}
	if cat.Tags[0] != (tags.TagCount{Tag: "原声", Count: 2}) {
		t.Errorf("top tag = %+v, want 原声 with 2", cat.Tags[0])
	}

	getJSON(t, srv.URL+"/healthz", &health)
	if !health.Loaded || health.Tracks != 3 {
		t.Errorf("health after load = %+v", health)
	}
}

func TestRouter_Tag(t *testing.T) {
	srv := newTestServer(t, staticFetcher(testTracks), "")

	var tag TagResponse
	if code := getJSON(t, srv.URL+"/api/tags/"+url.PathEscape("原声"), &tag); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if tag.Count != 2 || len(tag.Tracks) != 2 {
		t.Errorf("tag = %+v", tag)
	}
	if len(tag.Related) != 1 || tag.Related[0] != "钢琴" {
		t.Errorf("Related = %v, want [钢琴]", tag.Related)
	}

	if code := getJSON(t, srv.URL+"/api/tags/nope", nil); code != http.StatusNotFound {
		t.Errorf("unknown tag status = %d, want 404", code)
	}
}

func TestRouter_Playlist(t *testing.T) {
	srv := newTestServer(t, staticFetcher(testTracks), "")

	resp, err := http.Get(srv.URL + "/api/tags/" + url.PathEscape("原声") + "/playlist.m3u")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/x-mpegurl" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(string(body), "https://example.com/p/3.m4a") {
		t.Errorf("playlist missing preview URL:\n%s", body)
	}

	if code := getJSON(t, srv.URL+"/api/tags/x/playlist.xspf", nil); code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", code)
	}
}

func TestRouter_SearchArtistsArchive(t *testing.T) {
	srv := newTestServer(t, staticFetcher(testTracks), "")

	var res SearchResponse
	getJSON(t, srv.URL+"/api/search?q=joe+hisaishi", &res)
	if len(res.Results) != 2 || len(res.ExactArtist) != 2 {
		t.Errorf("search = %d results, %d exact", len(res.Results), len(res.ExactArtist))
	}

	var artists map[string][]struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	getJSON(t, srv.URL+"/api/artists", &artists)
	if artists["artists"][0].Name != "Joe Hisaishi" {
		t.Errorf("artists = %+v", artists)
	}

	var tl struct {
		Total   int `json:"total"`
		Undated int `json:"undated"`
	}
	getJSON(t, srv.URL+"/api/archive", &tl)
	if tl.Total != 2 || tl.Undated != 1 {
		t.Errorf("archive = %+v", tl)
	}

	var track model.Track
	if code := getJSON(t, srv.URL+"/api/tracks/2", &track); code != http.StatusOK || track.Title != "Strobe" {
		t.Errorf("track = %d %+v", code, track)
	}
}

func TestRouter_NetworkFailureThenRefetch(t *testing.T) {
	var healthy atomic.Bool
	fetcher := fetchFunc(func(ctx context.Context, candidates []string) (json.RawMessage, error) {
		if !healthy.Load() {
			return nil, errors.New("connection refused")
		}
		return staticFetcher(testTracks)(ctx, candidates)
	})
	srv := newTestServer(t, fetcher, "")

	var errResp ErrorResponse
	if code := getJSON(t, srv.URL+"/api/tags", &errResp); code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if errResp.Kind != "network" || !errResp.Retryable {
		t.Errorf("error body = %+v", errResp)
	}

	healthy.Store(true)
	resp, err := http.Post(srv.URL+"/api/refetch", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refetch status = %d", resp.StatusCode)
	}

	var tagsResp TagsResponse
	if code := getJSON(t, srv.URL+"/api/tags", &tagsResp); code != http.StatusOK || len(tagsResp.Tags) == 0 {
		t.Errorf("tags after refetch = %d %+v", code, tagsResp)
	}
}

func TestRouter_StaticData(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.json"), []byte(testTracks), 0644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, staticFetcher(testTracks), dir)

	var raw []json.RawMessage
	if code := getJSON(t, srv.URL+"/data/data.json", &raw); code != http.StatusOK || len(raw) != 3 {
		t.Errorf("static data = %d, %d records", code, len(raw))
	}
}

func TestRouter_CoversRejectRemoteURLs(t *testing.T) {
	var upstreamHits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("secret"))
	}))
	defer upstream.Close()

	store := catalog.NewStore(staticFetcher(testTracks), catalog.NewCache(), testSources, catalog.Options{Logger: logging.Discard()})
	covers := cover.NewService(t.TempDir(), 32, apphttp.NewClient(""), logging.Discard())
	srv := httptest.NewServer(NewRouter(&Deps{Store: store, Covers: covers, Logger: logging.Discard()}))
	defer srv.Close()

	for _, remote := range []string{upstream.URL + "/admin/secret.jpg", "https://example.com/a.jpg"} {
		var body ErrorResponse
		if status := getJSON(t, srv.URL+"/covers/"+remote, &body); status != http.StatusBadRequest {
			t.Errorf("GET /covers/%s status = %d, want 400", remote, status)
		}
	}
	if n := upstreamHits.Load(); n != 0 {
		t.Errorf("upstream contacted %d times", n)
	}

	// Local names still reach the cover directory.
	if status := getJSON(t, srv.URL+"/covers/missing.jpg", nil); status != http.StatusNotFound {
		t.Errorf("missing local cover status = %d, want 404", status)
	}
}
