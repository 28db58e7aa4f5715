package archive

import (
	"cmp"
	"slices"
	"time"

	"github.com/handiism/music-universe/internal/model"
)

// Entry is one dated track.
type Entry struct {
	Track model.Track `json:"track"`
	Time  time.Time   `json:"time"`
}

// Month groups the entries of one calendar month, newest first.
type Month struct {
	Month   time.Month `json:"month"`
	Entries []Entry    `json:"entries"`
}

// Year groups the months of one year, newest first.
type Year struct {
	Year   int     `json:"year"`
	Months []Month `json:"months"`
}

// Timeline is the archive view of a catalog.
type Timeline struct {
	Years []Year `json:"years"`

	// Latest is the most recently archived track, nil when nothing is dated.
	Latest *Entry `json:"latest,omitempty"`

	// First is when the earliest track was archived.
	First time.Time `json:"first"`

	// DaysSinceFirst counts whole days from First to the build time.
	DaysSinceFirst int `json:"days_since_first"`

	// Total counts the dated tracks.
	Total int `json:"total"`

	// Undated counts tracks whose date is missing or unparseable.
	Undated int `json:"undated"`
}

// Build groups tracks by year and month. Dates without a zone are read in
// loc; now is the reference for DaysSinceFirst.
func Build(tracks []model.Track, loc *time.Location, now time.Time) Timeline {
	var (
		entries []Entry
		tl      Timeline
	)
	for i := range tracks {
		ts, err := model.ParseDate(tracks[i].Date, loc)
		if err != nil {
			tl.Undated++
			continue
		}
		entries = append(entries, Entry{Track: tracks[i], Time: ts})
	}

	tl.Total = len(entries)
	tl.Years = []Year{}
	if len(entries) == 0 {
		return tl
	}

	// Newest first; ties keep catalog order.
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Time.Compare(a.Time)
	})

	latest := entries[0]
	tl.Latest = &latest
	tl.First = entries[len(entries)-1].Time
	if d := now.Sub(tl.First); d > 0 {
		tl.DaysSinceFirst = int(d.Hours() / 24)
	}

	for _, e := range entries {
		y, m := e.Time.Year(), e.Time.Month()
		if n := len(tl.Years); n == 0 || tl.Years[n-1].Year != y {
			tl.Years = append(tl.Years, Year{Year: y})
		}
		year := &tl.Years[len(tl.Years)-1]
		if n := len(year.Months); n == 0 || year.Months[n-1].Month != m {
			year.Months = append(year.Months, Month{Month: m})
		}
		month := &year.Months[len(year.Months)-1]
		month.Entries = append(month.Entries, e)
	}

	return tl
}

// Count returns the number of entries in the given year, 0 if none.
func (tl Timeline) Count(year int) int {
	i, found := slices.BinarySearchFunc(tl.Years, year, func(y Year, target int) int {
		// Years are sorted descending.
		return cmp.Compare(target, y.Year)
	})
	if !found {
		return 0
	}
	n := 0
	for _, m := range tl.Years[i].Months {
		n += len(m.Entries)
	}
	return n
}
