// Package days canonicalizes free-form day-of-week expressions into a
// non-empty set of the seven lowercase day tokens.
package days

import (
	"encoding/json"
	"strings"
	"time"
)

// Day is a canonical lowercase day token
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Week lists the canonical days in display order
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var everydaySynonyms = map[string]bool{
	"everyday":    true,
	"daily":       true,
	"all week":    true,
	"all days":    true,
	"every day":   true,
	"7 days":      true,
	"whole week":  true,
	"entire week": true,
	"all":         true,
}

var dayTokens = map[string]Day{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

// Set is a bitset over Week. The zero value is empty; Normalize never returns it.
type Set uint8

// All is the set of all seven days
const All Set = 1<<7 - 1

func bit(d Day) Set {
	for i, w := range Week {
		if w == d {
			return 1 << i
		}
	}
	return 0
}

// Of builds a set from canonical days
func Of(ds ...Day) Set {
	var s Set
	for _, d := range ds {
		s |= bit(d)
	}
	return s
}

// Has reports whether d is in the set
func (s Set) Has(d Day) bool { return s&bit(d) != 0 }

// IsEmpty reports whether no day is set
func (s Set) IsEmpty() bool { return s == 0 }

// Len returns the number of days in the set
func (s Set) Len() int {
	n := 0
	for _, d := range Week {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// AsList returns the days in week order
func (s Set) AsList() []string {
	out := make([]string, 0, 7)
	for _, d := range Week {
		if s.Has(d) {
			out = append(out, string(d))
		}
	}
	return out
}

func (s Set) String() string { return strings.Join(s.AsList(), ",") }

// MarshalJSON encodes the set as a list of day names
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.AsList())
}

// UnmarshalJSON accepts either a single string or a list and normalizes it
func (s *Set) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Normalize(v)
	return nil
}

// ParseDay matches a full day name or abbreviation
func ParseDay(s string) (Day, bool) {
	d, ok := dayTokens[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// FromWeekday converts a time.Weekday
func FromWeekday(w time.Weekday) Day {
	// time.Sunday is 0
	return Week[(int(w)+6)%7]
}

func isEveryday(s string) bool {
	return everydaySynonyms[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeString canonicalizes a scalar day expression. Anything that is
// neither an everyday synonym nor a single day maps to the whole week.
func NormalizeString(s string) Set {
	if strings.TrimSpace(s) == "" || isEveryday(s) {
		return All
	}
	if d, ok := ParseDay(s); ok {
		return Of(d)
	}
	return All
}

// NormalizeList canonicalizes a list of day expressions. One everyday
// synonym anywhere widens the whole list; unparseable entries are skipped.
func NormalizeList(items []string) Set {
	for _, item := range items {
		if isEveryday(item) {
			return All
		}
	}
	var s Set
	for _, item := range items {
		if d, ok := ParseDay(item); ok {
			s |= bit(d)
		}
	}
	if s.IsEmpty() {
		return All
	}
	return s
}

// Normalize handles the loosely typed values decoded from model JSON:
// nil, a string, or a list of arbitrary values.
func Normalize(v interface{}) Set {
	switch t := v.(type) {
	case nil:
		return All
	case string:
		return NormalizeString(t)
	case []string:
		return NormalizeList(t)
	case []interface{}:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if str, ok := item.(string); ok {
				items = append(items, str)
			}
		}
		return NormalizeList(items)
	default:
		return All
	}
}
