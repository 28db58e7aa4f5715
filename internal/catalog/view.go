package catalog

import (
	"time"

	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/tags"
)

// View is one immutable snapshot of the catalog.
//
// Consumers must treat every field as read-only: the same View is shared
// by all readers of the cache.
type View struct {
	// Tracks is the validated track list with positions and tags filled in.
	Tracks []model.Track

	// Aggregates holds the precomputed artist and style counts.
	Aggregates model.AggregateCounts

	// Tags holds tag frequency and co-occurrence.
	Tags *tags.Index

	// LoadedAt is when the snapshot was completed.
	LoadedAt time.Time

	byID map[model.TrackID]int
}

func newView(tracks []model.Track, aggregates model.AggregateCounts, loadedAt time.Time) *View {
	trackTags := make([][]string, len(tracks))
	byID := make(map[model.TrackID]int, len(tracks))
	for i := range tracks {
		trackTags[i] = tracks[i].Tags
		byID[tracks[i].ID] = i
	}

	return &View{
		Tracks:     tracks,
		Aggregates: aggregates,
		Tags:       tags.BuildIndex(trackTags),
		LoadedAt:   loadedAt,
		byID:       byID,
	}
}

// TagFrequency maps each tag to the number of tracks carrying it.
func (v *View) TagFrequency() map[string]int {
	return v.Tags.Frequency
}

// TagCoOccurrence maps each tag to the tags seen alongside it.
func (v *View) TagCoOccurrence() map[string]map[string]struct{} {
	return v.Tags.CoOccurrence
}

// Track looks up a track by id.
func (v *View) Track(id model.TrackID) (*model.Track, bool) {
	i, ok := v.byID[id]
	if !ok {
		return nil, false
	}
	return &v.Tracks[i], true
}

// TracksWithTag returns the tracks carrying tag, in catalog order.
func (v *View) TracksWithTag(tag string) []model.Track {
	var result []model.Track
	for i := range v.Tracks {
		if v.Tracks[i].HasTag(tag) {
			result = append(result, v.Tracks[i])
		}
	}
	return result
}
