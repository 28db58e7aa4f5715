package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TrackID is a track identifier. The data files use both numbers and
// strings for ids, so the value is normalized to its string form.
type TrackID string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (id *TrackID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TrackID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("track id must be a string or number: %w", err)
	}
	// Integral floats like 12.0 keep the integer spelling.
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*id = TrackID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = TrackID(n.String())
	return nil
}

// Position is a point in the universe scene.
type Position [3]float64

// Track represents one entry of the music collection.
//
// Track contains:
//   - Display strings (Title, Artist, Album)
//   - A free-text Note that carries the style tags
//   - Cover and preview locations
//   - A scene Position, assigned by the catalog when the data file has none
//   - Tags derived from Note by the catalog
//
// Example:
//
//	var tracks []model.Track
//	json.Unmarshal(data, &tracks)
//	fmt.Println(tracks[0].Title, tracks[0].Artist)
type Track struct {
	// ID is unique across the catalog.
	ID TrackID `json:"id"`

	// Title is the track title. Older data files call it "music".
	Title string `json:"title"`

	// Artist may hold several artists joined by "," or "&".
	Artist string `json:"artist"`

	Album string `json:"album"`

	// Note is the free-text annotation the tags are derived from.
	Note string `json:"note,omitempty"`

	// Cover is the relative path (or absolute URL) of the cover image.
	Cover string `json:"cover,omitempty"`

	// MobileCover is an optional smaller cover for narrow screens.
	MobileCover string `json:"cover_mobile,omitempty"`

	// PreviewURL points to an audio preview. It may be region-locked.
	PreviewURL string `json:"previewUrl,omitempty"`

	URL string `json:"url,omitempty"`

	// Date is the archive timestamp as written in the data file.
	Date string `json:"date,omitempty"`

	// Position is nil until assigned.
	Position *Position `json:"position,omitempty"`

	// Tags is derived from Note and never read from the data file.
	Tags []string `json:"tags"`
}

// trackSource mirrors the data file layout, including legacy field names.
type trackSource struct {
	ID          TrackID         `json:"id"`
	Title       string          `json:"title"`
	Music       string          `json:"music"`
	Artist      string          `json:"artist"`
	Album       string          `json:"album"`
	Note        string          `json:"note"`
	Cover       string          `json:"cover"`
	MobileCover string          `json:"cover_mobile"`
	PreviewURL  string          `json:"previewUrl"`
	URL         string          `json:"url"`
	Date        string          `json:"date"`
	Position    json.RawMessage `json:"position"`
}

// DecodeTrack parses one record of the track list.
//
// The position is kept only when it is an array of exactly three numbers;
// anything else leaves Position nil so the catalog assigns one.
// Tags are never taken from the source.
func DecodeTrack(data []byte) (Track, error) {
	var src trackSource
	if err := json.Unmarshal(data, &src); err != nil {
		return Track{}, err
	}

	track := Track{
		ID:          src.ID,
		Title:       FirstNonEmpty(src.Title, src.Music),
		Artist:      src.Artist,
		Album:       src.Album,
		Note:        src.Note,
		Cover:       src.Cover,
		MobileCover: src.MobileCover,
		PreviewURL:  src.PreviewURL,
		URL:         src.URL,
		Date:        src.Date,
	}

	if len(src.Position) > 0 {
		var coords []float64
		if err := json.Unmarshal(src.Position, &coords); err == nil && len(coords) == 3 {
			pos := Position{coords[0], coords[1], coords[2]}
			track.Position = &pos
		}
	}

	return track, nil
}

// HasTag reports whether the track carries the given derived tag.
func (t *Track) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

var artistSeparator = regexp.MustCompile(`\s*[,&，]\s*`)

// Artists splits the Artist field into individual names.
//
// Example:
//
//	t := Track{Artist: "Joe Hisaishi & Yo-Yo Ma, London Symphony"}
//	t.Artists() // ["Joe Hisaishi", "Yo-Yo Ma", "London Symphony"]
func (t *Track) Artists() []string {
	return SplitArtists(t.Artist)
}

// SplitArtists splits a joined artist string on "," and "&".
func SplitArtists(artist string) []string {
	var names []string
	for _, name := range artistSeparator.Split(artist, -1) {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
