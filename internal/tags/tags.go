package tags

import (
	"regexp"
	"strings"
)

// delimiters matches every separator allowed inside a note. The word "and"
// only splits when it stands alone.
var delimiters = regexp.MustCompile(`(?i)[,，;；/\\|]|\band\b`)

var spaces = regexp.MustCompile(`\s+`)

// aliases maps lower-cased raw tags to their canonical form.
var aliases = map[string]string{
	"ost":                      "原声",
	"soundtrack":               "原声",
	"原声带":                      "原声",
	"原声":                       "原声",
	"电音":                       "电子乐",
	"电子":                       "电子乐",
	"game":                     "游戏音乐",
	"graphic background music": "motion",
	"循环过":                      "循环",
}

// Derive returns the ordered, de-duplicated tag list for a note.
//
// The result depends only on the note text. An empty note yields nil.
func Derive(note string) []string {
	if strings.TrimSpace(note) == "" {
		return nil
	}

	var result []string
	seen := make(map[string]struct{})
	for _, part := range delimiters.Split(note, -1) {
		tag := Normalize(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	return result
}

// Normalize trims a raw tag, collapses inner whitespace, and applies the
// alias table. It returns "" for blank input.
func Normalize(raw string) string {
	tag := spaces.ReplaceAllString(strings.TrimSpace(raw), " ")
	if tag == "" {
		return ""
	}
	if canonical, ok := aliases[strings.ToLower(tag)]; ok {
		return canonical
	}
	return tag
}
