package tags

import "sort"

// Index is the derived tag index of a catalog. It is built once and
// treated as read-only afterwards.
type Index struct {
	// Frequency maps a tag to the number of tracks carrying it.
	Frequency map[string]int

	// CoOccurrence maps a tag to the set of tags seen on the same track.
	// The relation is symmetric and never contains self-edges.
	CoOccurrence map[string]map[string]struct{}
}

// TagCount is one row of a ranked tag listing.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// BuildIndex builds the index from per-track tag lists. Each list must
// already be de-duplicated, as returned by Derive.
func BuildIndex(trackTags [][]string) *Index {
	idx := &Index{
		Frequency:    make(map[string]int),
		CoOccurrence: make(map[string]map[string]struct{}),
	}

	for _, list := range trackTags {
		for _, tag := range list {
			idx.Frequency[tag]++
		}
		if len(list) < 2 {
			continue
		}
		for i, a := range list {
			for _, b := range list[i+1:] {
				if a == b {
					continue
				}
				idx.link(a, b)
				idx.link(b, a)
			}
		}
	}

	return idx
}

func (idx *Index) link(from, to string) {
	set, ok := idx.CoOccurrence[from]
	if !ok {
		set = make(map[string]struct{})
		idx.CoOccurrence[from] = set
	}
	set[to] = struct{}{}
}

// Count returns how many tracks carry tag.
func (idx *Index) Count(tag string) int {
	return idx.Frequency[tag]
}

// Related returns the tags that co-occur with tag, sorted.
func (idx *Index) Related(tag string) []string {
	set := idx.CoOccurrence[tag]
	related := make([]string, 0, len(set))
	for t := range set {
		related = append(related, t)
	}
	sort.Strings(related)
	return related
}

// Ranked lists every tag by count, most frequent first. Ties sort by tag.
func (idx *Index) Ranked() []TagCount {
	ranked := make([]TagCount, 0, len(idx.Frequency))
	for tag, count := range idx.Frequency {
		ranked = append(ranked, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	return ranked
}
