package model

// AggregateCounts holds precomputed counts shipped next to the track list.
//
// The catalog treats it as pass-through data; only its shape is checked.
type AggregateCounts struct {
	// ArtistCounts maps an artist name to its number of tracks.
	ArtistCounts map[string]int `json:"artist_counts"`

	// StyleCounts maps a style label to its number of tracks.
	StyleCounts map[string]int `json:"style_counts"`
}

// EmptyAggregateCounts returns counts with both maps allocated.
func EmptyAggregateCounts() AggregateCounts {
	return AggregateCounts{
		ArtistCounts: map[string]int{},
		StyleCounts:  map[string]int{},
	}
}
