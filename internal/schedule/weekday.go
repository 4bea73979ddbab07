package schedule

import (
	"strconv"
	"strings"
	"time"
)

// WeekdaySet is a canonical set of weekdays, 0 (Sunday) through 6 (Saturday).
type WeekdaySet map[int]struct{}

func (s WeekdaySet) Contains(weekday int) bool {
	_, ok := s[weekday]
	return ok
}

// MatchesDate reports whether the date's weekday is in the set.
func (s WeekdaySet) MatchesDate(date time.Time) bool {
	return s.Contains(int(date.Weekday()))
}

func (s WeekdaySet) IsEmpty() bool {
	return len(s) == 0
}

var weekdayNames = map[string]int{
	"sunday": 0, "sun": 0,
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2, "tues": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4, "thur": 4, "thurs": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
}

var weekdayKanji = map[string]int{
	"日": 0, "月": 1, "火": 2, "水": 3, "木": 4, "金": 5, "土": 6,
}

// NormalizeWeekdays converts a heterogeneous token list into a canonical
// weekday set. Accepted representations: numeric 0-6, English day names and
// abbreviations (any case, trailing period tolerated), and single-character
// Japanese day names. Unrecognized tokens are silently dropped; the month
// grid has always been permissive about preference input and callers rely
// on that.
func NormalizeWeekdays(tokens []string) WeekdaySet {
	set := make(WeekdaySet)
	for _, token := range tokens {
		if wd, ok := parseWeekdayToken(token); ok {
			set[wd] = struct{}{}
		}
	}
	return set
}

func parseWeekdayToken(token string) (int, bool) {
	t := strings.TrimSpace(token)
	if t == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(t); err == nil {
		if n >= 0 && n <= 6 {
			return n, true
		}
		return 0, false
	}

	if wd, ok := weekdayKanji[t]; ok {
		return wd, true
	}
	// "火曜日" style tokens reduce to their first character
	if wd, ok := weekdayKanji[firstRune(t)]; ok {
		return wd, true
	}

	name := strings.ToLower(strings.TrimSuffix(t, "."))
	if wd, ok := weekdayNames[name]; ok {
		return wd, true
	}

	return 0, false
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
