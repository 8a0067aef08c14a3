package venue

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"mealsteals/dealworker/internal/days"
)

var (
	dayLinePattern   = regexp.MustCompile(`^\s*([A-Za-z]+(?:\s*[-–]\s*[A-Za-z]+)?)\s*:\s*(.+)$`)
	dayRangeSep      = regexp.MustCompile(`\s*[-–]\s*`)
	timeRangePattern = regexp.MustCompile(`(?i)(\d{1,2}):?(\d{0,2})\s*(am|pm)?\s*[-–—]\s*(\d{1,2}):?(\d{0,2})\s*(am|pm)?`)
	spaceReplacer    = strings.NewReplacer("\u202f", " ", "\u2009", " ", "\u00a0", " ")
)

const minutesPerDay = 24 * 60

// timeRange is a span of minutes after local midnight. Start > End crosses
// midnight and End may be minutesPerDay for a range running to 24:00.
type timeRange struct {
	Start, End int
}

func (r timeRange) overnight() bool { return r.Start > r.End }

// hoursLine is one parsed opening-hours line
type hoursLine struct {
	Days   days.Set
	AllDay bool
	Ranges []timeRange
}

// IsOpenNow reports whether a venue is open right now in its own timezone.
// A venue without a timezone is reported closed.
func IsOpenNow(openHours []string, timezone string) bool {
	return IsOpenAt(openHours, timezone, time.Now())
}

// IsOpenAt evaluates openHours at instant now converted to timezone.
// Lines that cannot be parsed are ignored.
func IsOpenAt(openHours []string, timezone string, now time.Time) bool {
	if timezone == "" {
		return false
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return false
	}
	local := now.In(loc)
	today := days.FromWeekday(local.Weekday())
	yesterday := days.FromWeekday(local.AddDate(0, 0, -1).Weekday())
	minute := local.Hour()*60 + local.Minute()

	for _, raw := range openHours {
		line, ok := parseHoursLine(raw)
		if !ok {
			continue
		}
		if line.AllDay {
			if line.Days.Has(today) {
				return true
			}
			continue
		}
		for _, r := range line.Ranges {
			if line.Days.Has(today) && r.containsToday(minute) {
				return true
			}
			if line.Days.Has(yesterday) && r.overnight() && minute < r.End {
				return true
			}
		}
	}
	return false
}

func (r timeRange) containsToday(minute int) bool {
	if r.overnight() {
		return minute >= r.Start
	}
	return minute >= r.Start && minute < r.End
}

// parseHoursLine reads "Monday: 11:00 AM – 10:00 PM", "Mon-Fri: 9AM-5PM",
// "Open 24 hours" and similar. Closed lines report !ok.
func parseHoursLine(raw string) (hoursLine, bool) {
	text := strings.TrimSpace(spaceReplacer.Replace(raw))
	lower := strings.ToLower(text)
	if text == "" {
		return hoursLine{}, false
	}

	var (
		set       = days.All
		timesPart = text
	)
	if m := dayLinePattern.FindStringSubmatch(text); m != nil {
		if s, ok := parseDayPattern(m[1]); ok {
			set = s
			timesPart = m[2]
		}
	}

	if strings.Contains(lower, "24 hours") || strings.Contains(lower, "24/7") {
		return hoursLine{Days: set, AllDay: true}, true
	}
	if strings.Contains(lower, "closed") {
		return hoursLine{}, false
	}
	if set == days.All && timesPart == text {
		// times without a day prefix say nothing about which day they apply to
		return hoursLine{}, false
	}

	ranges := parseTimeRanges(timesPart)
	if len(ranges) == 0 {
		return hoursLine{}, false
	}
	return hoursLine{Days: set, Ranges: ranges}, true
}

// parseDayPattern reads a single day or a range with week wrap, e.g. "Fri-Mon"
func parseDayPattern(pattern string) (days.Set, bool) {
	parts := dayRangeSep.Split(pattern, -1)
	switch len(parts) {
	case 1:
		d, ok := days.ParseDay(parts[0])
		if !ok {
			return 0, false
		}
		return days.Of(d), true
	case 2:
		start, ok1 := days.ParseDay(parts[0])
		end, ok2 := days.ParseDay(parts[1])
		if !ok1 || !ok2 {
			return 0, false
		}
		return dayRange(start, end), true
	default:
		return 0, false
	}
}

func dayRange(start, end days.Day) days.Set {
	idx := func(d days.Day) int {
		for i, w := range days.Week {
			if w == d {
				return i
			}
		}
		return 0
	}
	var set days.Set
	for i := idx(start); ; i = (i + 1) % 7 {
		set |= days.Of(days.Week[i])
		if i == idx(end) {
			return set
		}
	}
}

func parseTimeRanges(s string) []timeRange {
	var out []timeRange
	for _, m := range timeRangePattern.FindAllStringSubmatch(s, -1) {
		startMeridiem, endMeridiem := strings.ToLower(m[3]), strings.ToLower(m[6])
		if startMeridiem == "" {
			// "5:00 – 10:00 PM" shares the trailing meridiem
			startMeridiem = endMeridiem
		}
		start, ok1 := toMinutes(m[1], m[2], startMeridiem)
		end, ok2 := toMinutes(m[4], m[5], endMeridiem)
		// 24:00 closes at the end of the day but opens at midnight
		start %= minutesPerDay
		if ok1 && ok2 && start != end {
			out = append(out, timeRange{Start: start, End: end})
		}
	}
	return out
}

func toMinutes(hourStr, minStr, meridiem string) (int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, false
	}
	minute := 0
	if minStr != "" {
		if minute, err = strconv.Atoi(minStr); err != nil {
			return 0, false
		}
	}
	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 24 || minute > 59 || (meridiem != "" && hour > 23) || (hour == 24 && minute != 0) {
		return 0, false
	}
	return hour*60 + minute, true
}
