// Package tags derives normalized style tags from free-text track notes and
// builds the tag index used by the tag explorer.
//
// # Derivation
//
// Derive splits a note on commas, semicolons, slashes, backslashes, pipes
// and the word "and", then applies a small alias table:
//
//	tags.Derive("原声带, 电音 and 流行") // ["原声", "电子乐", "流行"]
//
// # Index
//
// BuildIndex counts how many tracks carry each tag and records which tags
// appear together on a track:
//
//	idx := tags.BuildIndex([][]string{{"rock", "indie"}, {"rock"}})
//	idx.Count("rock")    // 2
//	idx.Related("indie") // ["rock"]
package tags
