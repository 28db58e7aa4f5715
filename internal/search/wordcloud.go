package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/handiism/music-universe/internal/model"
)

// Word is one entry of a word cloud.
type Word struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// WordCloud holds the note and artist frequency lists.
type WordCloud struct {
	Notes   []Word `json:"notes"`
	Artists []Word `json:"artists"`
}

// BuildWordCloud counts comma-separated note words and whole artist
// fields. Both lists are sorted by count, then text.
func BuildWordCloud(tracks []model.Track) WordCloud {
	notes := make(map[string]int)
	artists := make(map[string]int)

	for i := range tracks {
		for _, word := range strings.Split(tracks[i].Note, ",") {
			if word = strings.TrimSpace(word); word != "" {
				notes[word]++
			}
		}
		if artist := strings.TrimSpace(tracks[i].Artist); artist != "" {
			artists[artist]++
		}
	}

	return WordCloud{Notes: rank(notes), Artists: rank(artists)}
}

func rank(counts map[string]int) []Word {
	words := make([]Word, 0, len(counts))
	for text, n := range counts {
		words = append(words, Word{Text: text, Value: n})
	}
	slices.SortFunc(words, func(a, b Word) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Text, b.Text)
	})
	return words
}
