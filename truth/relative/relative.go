// Package relative resolves a fixed grammar of English time phrases
// ("next Tuesday at 2pm", "in 3 days", "end of next month") against an
// explicit anchor instant. The resolver is pure: it never reads the
// clock.
package relative

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tempuskit/libtempus/truth"
	"github.com/tempuskit/libtempus/truth/temporal"
	"github.com/tempuskit/libtempus/truth/tz"
)

// WeekStart selects the first day of the week for period arithmetic.
type WeekStart int

const (
	Monday WeekStart = iota
	Sunday
)

func (w WeekStart) weekday() time.Weekday {
	if w == Sunday {
		return time.Sunday
	}
	return time.Monday
}

// Options configures resolution. The zero value starts weeks on Monday.
type Options struct {
	WeekStart WeekStart
}

// Resolution is a resolved relative expression.
type Resolution struct {
	ResolvedUTC    time.Time
	ResolvedLocal  time.Time
	Interpretation string
}

const glossLayout = "Monday, January 2, 2006 at 3:04 PM"

var (
	simpleDayPattern = regexp.MustCompile(`^(today|tomorrow|yesterday)(?:\s+(morning|afternoon|evening|night))?$`)
	weekdayPattern   = regexp.MustCompile(`^(next|last)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)(?:\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?)?$`)
	offsetPattern    = regexp.MustCompile(`^in\s+(\d+)\s+(minute|hour|day|week|month|year)s?$`)
	agoPattern       = regexp.MustCompile(`^(\d+)\s+(minute|hour|day|week|month|year)s?\s+ago$`)
	compactPattern   = regexp.MustCompile(`^[+-](?:\d+d)?(?:\d+h)?(?:\d+m)?(?:\d+s)?$`)
	periodPattern    = regexp.MustCompile(`^(start|end)\s+of\s+(this|last|next)\s+(week|month|quarter|year)$`)
	ordinalPattern   = regexp.MustCompile(`^(first|second|third|fourth|fifth|last|\d{1,2}(?:st|nd|rd|th))\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\s+of\s+(january|february|march|april|may|june|july|august|september|october|november|december)$`)
)

var periodHours = map[string]int{
	"morning":   9,
	"afternoon": 14,
	"evening":   18,
	"night":     21,
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// Resolve parses expression against the anchor instant in the given
// zone. The anchor is an RFC 3339 datetime.
func Resolve(anchor, expression, zone string, opts Options) (*Resolution, error) {
	anchorInstant, err := temporal.ParseInstant(anchor)
	if err != nil {
		return nil, err
	}
	loc, err := tz.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	local := anchorInstant.In(loc)
	expr := strings.ToLower(strings.TrimSpace(expression))
	expr = strings.Join(strings.Fields(expr), " ")

	var resolved time.Time
	switch {
	case simpleDayPattern.MatchString(expr):
		resolved = resolveSimpleDay(simpleDayPattern.FindStringSubmatch(expr), local, loc)
	case weekdayPattern.MatchString(expr):
		resolved, err = resolveWeekday(weekdayPattern.FindStringSubmatch(expr), local, loc, expression)
	case offsetPattern.MatchString(expr):
		m := offsetPattern.FindStringSubmatch(expr)
		n, _ := strconv.Atoi(m[1])
		resolved = shiftByUnit(local, n, m[2], loc)
	case agoPattern.MatchString(expr):
		m := agoPattern.FindStringSubmatch(expr)
		n, _ := strconv.Atoi(m[1])
		resolved = shiftByUnit(local, -n, m[2], loc)
	case compactPattern.MatchString(expr) && expr != "+" && expr != "-":
		adj, adjErr := temporal.AdjustTimestamp(anchor, expr, zone)
		if adjErr != nil {
			return nil, truth.WrapError(truth.ErrParse, adjErr, "cannot resolve %q", expression)
		}
		resolved = adj.AdjustedLocal
	case periodPattern.MatchString(expr):
		resolved = resolvePeriod(periodPattern.FindStringSubmatch(expr), local, loc, opts)
	case ordinalPattern.MatchString(expr):
		resolved, err = resolveOrdinal(ordinalPattern.FindStringSubmatch(expr), local, loc, expression)
	default:
		return nil, truth.NewError(truth.ErrParse, "cannot resolve %q", expression)
	}
	if err != nil {
		return nil, err
	}

	return &Resolution{
		ResolvedUTC:    resolved.UTC(),
		ResolvedLocal:  resolved,
		Interpretation: resolved.Format(glossLayout),
	}, nil
}

func resolveSimpleDay(m []string, local time.Time, loc *time.Location) time.Time {
	dayShift := 0
	switch m[1] {
	case "tomorrow":
		dayShift = 1
	case "yesterday":
		dayShift = -1
	}
	hour := 0
	if m[2] != "" {
		hour = periodHours[m[2]]
	}
	y, mo, d := local.AddDate(0, 0, dayShift).Date()
	return time.Date(y, mo, d, hour, 0, 0, 0, loc)
}

func resolveWeekday(m []string, local time.Time, loc *time.Location, original string) (time.Time, error) {
	target := weekdays[m[2]]
	var shift int
	if m[1] == "next" {
		shift = (int(target) - int(local.Weekday()) + 7) % 7
		if shift == 0 {
			shift = 7
		}
	} else {
		shift = -((int(local.Weekday()) - int(target) + 7) % 7)
		if shift == 0 {
			shift = -7
		}
	}

	hour, minute := 0, 0
	if m[3] != "" {
		hour, _ = strconv.Atoi(m[3])
		if m[4] != "" {
			minute, _ = strconv.Atoi(m[4])
		}
		switch m[5] {
		case "am":
			if hour == 12 {
				hour = 0
			}
		case "pm":
			if hour != 12 {
				hour += 12
			}
		}
		if hour > 23 || minute > 59 {
			return time.Time{}, truth.NewError(truth.ErrParse, "cannot resolve %q: time of day out of range", original)
		}
	}

	y, mo, d := local.AddDate(0, 0, shift).Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, loc), nil
}

func shiftByUnit(local time.Time, n int, unit string, loc *time.Location) time.Time {
	switch unit {
	case "minute":
		return local.Add(time.Duration(n) * time.Minute)
	case "hour":
		return local.Add(time.Duration(n) * time.Hour)
	case "day":
		return local.AddDate(0, 0, n)
	case "week":
		return local.AddDate(0, 0, 7*n)
	case "month":
		return local.AddDate(0, n, 0)
	}
	return local.AddDate(n, 0, 0)
}

func resolvePeriod(m []string, local time.Time, loc *time.Location, opts Options) time.Time {
	edge, which, unit := m[1], m[2], m[3]

	var firstDay time.Time
	var lastDay time.Time
	y, mo, d := local.Date()

	switch unit {
	case "week":
		back := (int(local.Weekday()) - int(opts.WeekStart.weekday()) + 7) % 7
		start := time.Date(y, mo, d, 0, 0, 0, 0, loc).AddDate(0, 0, -back)
		start = start.AddDate(0, 0, 7*whichShift(which))
		firstDay = start
		lastDay = start.AddDate(0, 0, 6)
	case "month":
		start := time.Date(y, mo, 1, 0, 0, 0, 0, loc).AddDate(0, whichShift(which), 0)
		firstDay = start
		lastDay = start.AddDate(0, 1, -1)
	case "quarter":
		qMonth := time.Month((int(mo)-1)/3*3 + 1)
		start := time.Date(y, qMonth, 1, 0, 0, 0, 0, loc).AddDate(0, 3*whichShift(which), 0)
		firstDay = start
		lastDay = start.AddDate(0, 3, -1)
	case "year":
		start := time.Date(y+whichShift(which), 1, 1, 0, 0, 0, 0, loc)
		firstDay = start
		lastDay = start.AddDate(1, 0, -1)
	}

	if edge == "start" {
		return firstDay
	}
	ly, lm, ld := lastDay.Date()
	return time.Date(ly, lm, ld, 23, 59, 59, 0, loc)
}

func whichShift(which string) int {
	switch which {
	case "last":
		return -1
	case "next":
		return 1
	}
	return 0
}

func resolveOrdinal(m []string, local time.Time, loc *time.Location, original string) (time.Time, error) {
	nth, last, err := parseOrdinal(m[1], original)
	if err != nil {
		return time.Time{}, err
	}
	weekday := weekdays[m[2]]
	month := months[m[3]]
	year := local.Year()

	if last {
		end := time.Date(year, month, 1, 0, 0, 0, 0, loc).AddDate(0, 1, -1)
		back := (int(end.Weekday()) - int(weekday) + 7) % 7
		return end.AddDate(0, 0, -back), nil
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	forward := (int(weekday) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDate(0, 0, forward+7*(nth-1))
	if candidate.Month() != month {
		return time.Time{}, truth.NewError(truth.ErrParse,
			"cannot resolve %q: no %s %s in %s %d", original, m[1], m[2], m[3], year)
	}
	return candidate, nil
}

func parseOrdinal(word, original string) (int, bool, error) {
	switch word {
	case "first":
		return 1, false, nil
	case "second":
		return 2, false, nil
	case "third":
		return 3, false, nil
	case "fourth":
		return 4, false, nil
	case "fifth":
		return 5, false, nil
	case "last":
		return 0, true, nil
	}
	digits := strings.TrimRight(word, "stndrh")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 5 {
		return 0, false, truth.NewError(truth.ErrParse, "cannot resolve %q: unsupported ordinal %q", original, word)
	}
	if fmt.Sprintf("%d%s", n, ordinalSuffix(n)) != word {
		return 0, false, truth.NewError(truth.ErrParse, "cannot resolve %q: unsupported ordinal %q", original, word)
	}
	return n, false, nil
}

func ordinalSuffix(n int) string {
	switch n {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
