// Package dateutil turns the date phrases people type into YYYY-MM-DD.
package dateutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical calendar date format.
const Layout = "2006-01-02"

// maxCount bounds "in N days/weeks/months/years".
const maxCount = 1000

var (
	ordinalRe  = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	relativeRe = regexp.MustCompile(`^(?:in\s+)?(\d+|a|an|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\s+(day|week|month|year)s?(?:\s+from\s+(?:now|today))?$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

var numericLayouts = []string{
	"2006-01-02", "2006-1-2",
	"2006/01/02", "2006/1/2",
	"2006.01.02", "2006.1.2",
}

var monthLayouts = []string{
	"January 2 2006", "Jan 2 2006",
	"2 January 2006", "2 Jan 2006",
}

var yearlessLayouts = []string{
	"January 2", "Jan 2",
	"2 January", "2 Jan",
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Normalize converts raw into a YYYY-MM-DD date relative to today.
// It reports false when raw is not a date it understands. Normalizing an
// already normalized date returns it unchanged.
func Normalize(raw string, today time.Time) (string, bool) {
	s := clean(raw)
	if s == "" {
		return "", false
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	for _, layout := range numericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), true
		}
	}

	switch s {
	case "today", "tonight", "now":
		return day.Format(Layout), true
	case "tomorrow", "tmrw", "tomorow":
		return day.AddDate(0, 0, 1).Format(Layout), true
	case "yesterday":
		return day.AddDate(0, 0, -1).Format(Layout), true
	case "day after tomorrow", "the day after tomorrow":
		return day.AddDate(0, 0, 2).Format(Layout), true
	case "next week", "in a week":
		return day.AddDate(0, 0, 7).Format(Layout), true
	case "next month", "in a month":
		return addMonths(day, 1).Format(Layout), true
	case "next year":
		return addMonths(day, 12).Format(Layout), true
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, ok := numberWords[m[1]]
		if !ok {
			var err error
			if n, err = strconv.Atoi(m[1]); err != nil || n > maxCount {
				return "", false
			}
		}
		switch m[2] {
		case "day":
			return day.AddDate(0, 0, n).Format(Layout), true
		case "week":
			return day.AddDate(0, 0, 7*n).Format(Layout), true
		case "month":
			return addMonths(day, n).Format(Layout), true
		case "year":
			return addMonths(day, 12*n).Format(Layout), true
		}
	}

	if d, ok := weekday(s, day); ok {
		return d.Format(Layout), true
	}

	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(day.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			// Jan 2 parses as a real day in any year, but Feb 29 must exist in this one.
			if d.Month() != t.Month() {
				return "", false
			}
			if d.Before(day) {
				d = d.AddDate(1, 0, 0)
			}
			return d.Format(Layout), true
		}
	}
	return "", false
}

// clean lower-cases raw and strips filler words and punctuation.
func clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, ".!?")
	s = strings.ReplaceAll(s, ",", " ")
	s = ordinalRe.ReplaceAllString(s, "$1")
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"due on ", "due ", "on ", "by ", "for "} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.Replace(s, " of ", " ", 1)
	s = strings.TrimPrefix(s, "the ")
	return s
}

// weekday resolves "friday" and "this friday" to the next such day on or
// after today, and "next friday" to the next one strictly after today.
func weekday(s string, day time.Time) (time.Time, bool) {
	strict := false
	switch {
	case strings.HasPrefix(s, "next "):
		strict = true
		s = strings.TrimPrefix(s, "next ")
	case strings.HasPrefix(s, "this "):
		s = strings.TrimPrefix(s, "this ")
	}
	wd, ok := weekdays[s]
	if !ok {
		return time.Time{}, false
	}
	delta := (int(wd) - int(day.Weekday()) + 7) % 7
	if strict && delta == 0 {
		delta = 7
	}
	return day.AddDate(0, 0, delta), true
}

// addMonths moves day n months ahead, clamping to the last day of the
// target month: Jan 31 plus one month is Feb 28, not Mar 3.
func addMonths(day time.Time, n int) time.Time {
	first := time.Date(day.Year(), day.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(day.Day(), last)-1)
}
