package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/handiism/music-universe/internal/model"
	"github.com/handiism/music-universe/internal/tags"
)

// decodeTracks validates the track-list payload. Shape problems never fail
// the load: a non-array payload yields an empty list, and records that are
// not objects, fail to decode, or repeat an id are skipped. Every problem
// is logged as a warning.
func decodeTracks(raw json.RawMessage, logger *slog.Logger) []model.Track {
	if jsonKind(raw) != '[' {
		warnMalformed(logger, malformed(ResourceTracks, "track list is not an array, using an empty list"))
		return []model.Track{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		warnMalformed(logger, malformed(ResourceTracks, "track list could not be decoded, using an empty list"))
		return []model.Track{}
	}

	tracks := make([]model.Track, 0, len(records))
	seen := make(map[model.TrackID]struct{}, len(records))
	for i, rec := range records {
		if jsonKind(rec) != '{' {
			warnMalformed(logger, malformed(ResourceTracks, fmt.Sprintf("record %d is not an object, skipped", i)))
			continue
		}

		track, err := model.DecodeTrack(rec)
		if err != nil {
			warnMalformed(logger, malformed(ResourceTracks, fmt.Sprintf("record %d could not be decoded, skipped: %v", i, err)))
			continue
		}

		if track.ID == "" {
			track.ID = synthesizeID(&track, seen)
		}
		if _, dup := seen[track.ID]; dup {
			warnMalformed(logger, malformed(ResourceTracks, fmt.Sprintf("record %d repeats id %q, skipped", i, track.ID)))
			continue
		}
		seen[track.ID] = struct{}{}

		tracks = append(tracks, track)
	}

	return tracks
}

// synthesizeID derives an id from the record's title, artist and album, so
// the record keeps its id, and with it its position, when other records are
// added or reordered. Identical records get numbered suffixes.
func synthesizeID(t *model.Track, seen map[model.TrackID]struct{}) model.TrackID {
	h := fnv.New64a()
	for _, field := range []string{t.Title, t.Artist, t.Album} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	base := model.TrackID(fmt.Sprintf("auto-%016x", h.Sum64()))

	id := base
	for n := 2; ; n++ {
		if _, taken := seen[id]; !taken {
			return id
		}
		id = model.TrackID(fmt.Sprintf("%s-%d", base, n))
	}
}

// aggregateSource keeps both maps raw so their presence and type can be checked.
type aggregateSource struct {
	ArtistCounts json.RawMessage `json:"artist_counts"`
	StyleCounts  json.RawMessage `json:"style_counts"`
}

// decodeAggregates validates the aggregate payload. Anything other than an
// object holding two object-typed count maps yields empty maps.
func decodeAggregates(raw json.RawMessage, logger *slog.Logger) model.AggregateCounts {
	fallback := func(reason string) model.AggregateCounts {
		warnMalformed(logger, malformed(ResourceAggregates, reason+", using empty counts"))
		return model.EmptyAggregateCounts()
	}

	if jsonKind(raw) != '{' {
		return fallback("aggregate payload is not an object")
	}

	var src aggregateSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return fallback("aggregate payload could not be decoded")
	}
	if jsonKind(src.ArtistCounts) != '{' || jsonKind(src.StyleCounts) != '{' {
		return fallback("artist_counts and style_counts must both be objects")
	}

	counts := model.EmptyAggregateCounts()
	if err := json.Unmarshal(src.ArtistCounts, &counts.ArtistCounts); err != nil {
		return fallback("artist_counts holds non-integer values")
	}
	var styles map[string]int
	if err := json.Unmarshal(src.StyleCounts, &styles); err != nil {
		return fallback("style_counts holds non-integer values")
	}
	counts.StyleCounts = tags.MergeStyleCounts(styles)

	return counts
}

// enrich assigns positions and derives tags in place.
func enrich(tracks []model.Track, positions *PositionAssigner) {
	for i := range tracks {
		positions.Assign(&tracks[i])
		tracks[i].Tags = tags.Derive(tracks[i].Note)
		if tracks[i].Tags == nil {
			tracks[i].Tags = []string{}
		}
	}
}

// jsonKind returns the first significant byte of a JSON document, or 0.
func jsonKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func warnMalformed(logger *slog.Logger, err *LoadError) {
	logger.Warn("malformed catalog payload", "kind", err.Kind, "resource", err.Resource, "detail", err.Message)
}
