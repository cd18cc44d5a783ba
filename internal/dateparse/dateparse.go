// Package dateparse normalizes the heterogeneous date strings found on
// performance-history pages into calendar dates.
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNoDate indicates that no recognizable date could be extracted.
var ErrNoDate = errors.New("no recognizable date")

// layouts are tried in order before falling back to digit extraction.
var layouts = []string{
	"2006-01-02",
	"2006年01月02日",
	"2006/01/02",
}

// digitRuns extracts a 4-digit year followed by 1-2 digit month and day,
// separated by arbitrary non-digit text.
var digitRuns = regexp.MustCompile(`(\d{4})\D*(\d{1,2})\D*(\d{1,2})`)

// Parse normalizes text into a UTC midnight calendar date. It attempts the
// literal layouts first, then the permissive digit-run fallback. The returned
// error wraps ErrNoDate when nothing date-like is present.
func Parse(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty input: %w", ErrNoDate)
	}

	for _, layout := range layouts {
		if d, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return d, nil
		}
	}

	m := digitRuns.FindStringSubmatch(trimmed)
	if m == nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", trimmed, ErrNoDate)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	d, err := makeDate(year, month, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", trimmed, err)
	}
	return d, nil
}

// makeDate builds a date and rejects out-of-range components. time.Date
// silently normalizes overflow (month 13 becomes January), so the result is
// compared back against the inputs.
func makeDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrNoDate
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, ErrNoDate
	}
	return d, nil
}
