package model

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownDateFormat is returned when a track date matches no known layout.
var ErrUnknownDateFormat = errors.New("unknown date format")

// dateLayouts lists the accepted archive date layouts, most common first.
var dateLayouts = []string{
	"2006年01月02日 15:04",
	"2006年1月2日 15:04",
	"2006年01月02日",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an archive date such as "2023年05月15日 14:30".
// Dates without a zone are interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnknownDateFormat
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnknownDateFormat
}
