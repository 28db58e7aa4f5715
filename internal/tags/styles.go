package tags

// MergeStyleCounts returns a copy of styleCounts with aliased labels folded
// into their canonical label, e.g. "graphic background music" into "motion".
// A nil map yields an empty map.
func MergeStyleCounts(styleCounts map[string]int) map[string]int {
	merged := make(map[string]int, len(styleCounts))
	for label, count := range styleCounts {
		if canonical, ok := styleAliases[label]; ok {
			label = canonical
		}
		merged[label] += count
	}
	return merged
}

// styleAliases is the subset of aliases applied to precomputed style counts.
var styleAliases = map[string]string{
	"graphic background music": "motion",
}
