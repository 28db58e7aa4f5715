package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/handiism/music-universe/internal/model"
)

// maxSuggestions bounds the artist suggestions returned for a prefix.
const maxSuggestions = 5

// Query describes a local catalog search.
type Query struct {
	// Text is matched case-insensitively against title, album, artist,
	// id and note.
	Text string

	// Artist restricts results to tracks whose artist contains it.
	Artist string
}

// ArtistCount is one artist with the number of tracks crediting them.
type ArtistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Searcher answers search queries over one catalog snapshot.
//
// A Searcher is immutable and safe for concurrent use. Build a new one
// whenever the catalog snapshot changes.
//
// Example:
//
//	s := search.New(view.Tracks)
//	for _, t := range s.Search(search.Query{Text: "hisaishi"}) {
//	    fmt.Println(t.Title)
//	}
type Searcher struct {
	tracks  []model.Track
	byCount []ArtistCount
	byName  []ArtistCount
}

// New indexes tracks for searching. The slice is not copied.
func New(tracks []model.Track) *Searcher {
	counts := make(map[string]int)
	for i := range tracks {
		for _, name := range tracks[i].Artists() {
			counts[name]++
		}
	}

	byName := make([]ArtistCount, 0, len(counts))
	for name, n := range counts {
		byName = append(byName, ArtistCount{Name: name, Count: n})
	}
	slices.SortFunc(byName, func(a, b ArtistCount) int {
		return strings.Compare(a.Name, b.Name)
	})

	byCount := slices.Clone(byName)
	slices.SortStableFunc(byCount, func(a, b ArtistCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return &Searcher{tracks: tracks, byCount: byCount, byName: byName}
}

// Search returns the tracks matching q in catalog order. An empty query
// matches every track.
func (s *Searcher) Search(q Query) []model.Track {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	artist := strings.ToLower(strings.TrimSpace(q.Artist))

	results := []model.Track{}
	for i := range s.tracks {
		t := &s.tracks[i]
		if artist != "" && !strings.Contains(strings.ToLower(t.Artist), artist) {
			continue
		}
		if text != "" && !matches(t, text) {
			continue
		}
		results = append(results, *t)
	}
	return results
}

func matches(t *model.Track, q string) bool {
	for _, field := range []string{t.Title, t.Album, t.Artist, string(t.ID), t.Note} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ExactArtist returns the tracks whose whole artist field equals name,
// ignoring case. It returns nil when there is none.
func (s *Searcher) ExactArtist(name string) []model.Track {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var results []model.Track
	for i := range s.tracks {
		if strings.EqualFold(s.tracks[i].Artist, name) {
			results = append(results, s.tracks[i])
		}
	}
	return results
}

// Artists returns every artist, most tracks first. Ties keep name order.
func (s *Searcher) Artists() []ArtistCount {
	return s.byCount
}

// ArtistsByName returns every artist in name order.
func (s *Searcher) ArtistsByName() []ArtistCount {
	return s.byName
}

// Suggestions returns up to five artist names containing input, most
// tracks first.
func (s *Searcher) Suggestions(input string) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}

	var names []string
	for _, a := range s.byCount {
		if strings.Contains(strings.ToLower(a.Name), input) {
			names = append(names, a.Name)
			if len(names) == maxSuggestions {
				break
			}
		}
	}
	return names
}
