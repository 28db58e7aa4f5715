package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/handiism/music-universe/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeTracks_NonArrayPayload(t *testing.T) {
	for _, raw := range []string{`{"id":1}`, `"tracks"`, `42`, `null`} {
		tracks := decodeTracks(json.RawMessage(raw), quietLogger())
		if tracks == nil || len(tracks) != 0 {
			t.Errorf("decodeTracks(%s) = %v, want empty non-nil list", raw, tracks)
		}
	}
}

func TestDecodeTracks_SkipsBadRecords(t *testing.T) {
	raw := `[
		{"id": 1, "title": "A", "artist": "X", "album": "L", "note": "流行"},
		"not a record",
		{"id": {"nested": true}, "title": "bad id"},
		{"id": 1, "title": "duplicate"},
		{"title": "no id"},
		{"id": "7", "music": "Legacy title"}
	]`

	tracks := decodeTracks(json.RawMessage(raw), quietLogger())

	want := []struct {
		id    model.TrackID
		title string
	}{
		{"1", "A"},
		{synthesizeID(&model.Track{Title: "no id"}, nil), "no id"},
		{"7", "Legacy title"},
	}
	if len(tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d: %+v", len(tracks), len(want), tracks)
	}
	for i, w := range want {
		if tracks[i].ID != w.id || tracks[i].Title != w.title {
			t.Errorf("track %d = (%q, %q), want (%q, %q)", i, tracks[i].ID, tracks[i].Title, w.id, w.title)
		}
	}
}

func TestDecodeTracks_SynthesizedIDsFollowContent(t *testing.T) {
	before := decodeTracks(json.RawMessage(`[
		{"title": "A", "artist": "X"},
		{"title": "B", "artist": "Y"}
	]`), quietLogger())
	after := decodeTracks(json.RawMessage(`[
		{"title": "New", "artist": "Z"},
		{"title": "A", "artist": "X"},
		{"title": "B", "artist": "Y"},
		{"title": "B", "artist": "Y"}
	]`), quietLogger())

	if len(after) != 4 {
		t.Fatalf("got %d tracks, want 4 (identical records keep distinct ids)", len(after))
	}
	if before[0].ID != after[1].ID || before[1].ID != after[2].ID {
		t.Errorf("ids moved with the record index: before %s %s, after %s %s",
			before[0].ID, before[1].ID, after[1].ID, after[2].ID)
	}
	if after[2].ID == after[3].ID {
		t.Errorf("identical records share id %s", after[2].ID)
	}

	// Positions are memoized by id, so an inserted record does not shift them.
	positions := NewPositionAssigner(5, rand.New(rand.NewPCG(5, 6)))
	enrich(before, positions)
	enrich(after, positions)
	if *before[0].Position != *after[1].Position || *before[1].Position != *after[2].Position {
		t.Error("positions changed after a record was inserted ahead")
	}
}

func TestDecodeAggregates(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantArtists map[string]int
		wantStyles  map[string]int
	}{
		{
			name:        "valid",
			raw:         `{"artist_counts": {"X": 2}, "style_counts": {"流行": 3}}`,
			wantArtists: map[string]int{"X": 2},
			wantStyles:  map[string]int{"流行": 3},
		},
		{
			name:        "style alias folded",
			raw:         `{"artist_counts": {}, "style_counts": {"motion": 1, "graphic background music": 2}}`,
			wantArtists: map[string]int{},
			wantStyles:  map[string]int{"motion": 3},
		},
		{
			name:        "array payload",
			raw:         `[1, 2]`,
			wantArtists: map[string]int{},
			wantStyles:  map[string]int{},
		},
		{
			name:        "missing map",
			raw:         `{"artist_counts": {"X": 2}}`,
			wantArtists: map[string]int{},
			wantStyles:  map[string]int{},
		},
		{
			name:        "map of wrong type",
			raw:         `{"artist_counts": [], "style_counts": {}}`,
			wantArtists: map[string]int{},
			wantStyles:  map[string]int{},
		},
		{
			name:        "non-integer values",
			raw:         `{"artist_counts": {"X": "two"}, "style_counts": {}}`,
			wantArtists: map[string]int{},
			wantStyles:  map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeAggregates(json.RawMessage(tt.raw), quietLogger())
			if !equalCounts(got.ArtistCounts, tt.wantArtists) {
				t.Errorf("ArtistCounts = %v, want %v", got.ArtistCounts, tt.wantArtists)
			}
			if !equalCounts(got.StyleCounts, tt.wantStyles) {
				t.Errorf("StyleCounts = %v, want %v", got.StyleCounts, tt.wantStyles)
			}
		})
	}
}

func TestEnrich(t *testing.T) {
	kept := model.Position{1, 2, 3}
	tracks := []model.Track{
		{ID: "a", Note: "原声带, 电音 and 流行"},
		{ID: "b", Position: &kept},
		{ID: "c", Note: "   "},
	}
	positions := NewPositionAssigner(5, rand.New(rand.NewPCG(1, 2)))

	enrich(tracks, positions)

	if got := tracks[0].Tags; len(got) != 3 || got[0] != "原声" || got[1] != "电子乐" || got[2] != "流行" {
		t.Errorf("tags = %v, want [原声 电子乐 流行]", got)
	}
	if tracks[1].Position == nil || *tracks[1].Position != kept {
		t.Errorf("source position overwritten: %v", tracks[1].Position)
	}
	if tracks[2].Tags == nil || len(tracks[2].Tags) != 0 {
		t.Errorf("blank note tags = %#v, want empty slice", tracks[2].Tags)
	}
	for _, tr := range tracks {
		if tr.Position == nil {
			t.Fatalf("track %s has no position", tr.ID)
		}
		for _, c := range tr.Position {
			if c < -5 || c > 5 {
				t.Errorf("track %s coordinate %v outside [-5, 5]", tr.ID, c)
			}
		}
	}
}

func TestPositionAssigner_Memoizes(t *testing.T) {
	a := NewPositionAssigner(0, rand.New(rand.NewPCG(3, 4)))
	if a.Radius() != DefaultPositionRadius {
		t.Errorf("Radius() = %v, want %v", a.Radius(), DefaultPositionRadius)
	}

	first := model.Track{ID: "x"}
	second := model.Track{ID: "x"}
	other := model.Track{ID: "y"}
	a.Assign(&first)
	a.Assign(&second)
	a.Assign(&other)

	if *first.Position != *second.Position {
		t.Errorf("same id got different positions: %v vs %v", *first.Position, *second.Position)
	}
	if *first.Position == *other.Position {
		t.Error("different ids got the same position")
	}
}

func equalCounts(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
