// Package recurrence expands RFC 5545 recurrence rules into absolute
// instants. Candidates are generated as naive wall-clock times and
// then resolved against the IANA zone, so the nominal local time of
// the rule survives DST transitions.
package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/tempuskit/libtempus/truth"
	"github.com/tempuskit/libtempus/truth/tz"
)

// Expand computes the occurrences of in, sorted strictly ascending by
// start. Rules with no COUNT, no UNTIL and no MaxCount fail with an
// expansion error before any iteration.
func Expand(in Input) ([]truth.ExpandedEvent, error) {
	loc, err := tz.LoadLocation(in.Timezone)
	if err != nil {
		return nil, err
	}
	if in.DurationMinutes <= 0 {
		return nil, truth.NewError(truth.ErrInvalidRule, "duration must be positive, got %d minutes", in.DurationMinutes)
	}

	parts, err := parseRule(in.Rule)
	if err != nil {
		return nil, err
	}

	count, hasCount := parts.count.Get()
	if !hasCount {
		count, hasCount = in.Count.Get()
	}
	if hasCount && count == 0 {
		return []truth.ExpandedEvent{}, nil
	}

	untilRaw := parts.until
	if untilRaw == "" {
		untilRaw = in.Until
	}
	var untilLocal, untilUTC time.Time
	var haveLocalUntil, haveUTCUntil bool
	if untilRaw != "" {
		bound, isUTC, err := parseUntil(untilRaw)
		if err != nil {
			return nil, err
		}
		if isUTC {
			untilUTC, haveUTCUntil = bound, true
		} else {
			untilLocal, haveLocalUntil = bound, true
		}
	}

	maxCount, hasMax := in.MaxCount.Get()
	if !hasCount && !haveLocalUntil && !haveUTCUntil && !hasMax {
		return nil, truth.NewError(truth.ErrExpansion, "rule %q is unbounded: no COUNT, UNTIL or max count", in.Rule)
	}

	opt, err := rrule.StrToROption(strings.Join(parts.body, ";"))
	if err != nil {
		return nil, truth.WrapError(truth.ErrInvalidRule, err, "invalid RRULE %q", in.Rule)
	}
	if hasCount {
		opt.Count = count
	}
	opt.Dtstart = naiveUTC(in.DTStart)

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, truth.WrapError(truth.ErrInvalidRule, err, "invalid RRULE %q", in.Rule)
	}

	excluded := make(map[time.Time]struct{}, len(in.ExDates))
	for _, x := range in.ExDates {
		excluded[naiveUTC(x)] = struct{}{}
	}

	policy := in.Policy.OrElse(tz.WallClock)
	duration := time.Duration(in.DurationMinutes) * time.Minute

	out := []truth.ExpandedEvent{}
	next := rule.Iterator()
	for {
		if hasMax && len(out) >= maxCount {
			break
		}
		candidate, ok := next()
		if !ok {
			break
		}
		if haveLocalUntil && candidate.After(untilLocal) {
			break
		}
		if _, skip := excluded[candidate]; skip {
			continue
		}
		start, ok := policy.Apply(tz.Resolve(candidate, loc)).Get()
		if !ok {
			continue
		}
		if haveUTCUntil && start.After(untilUTC) {
			break
		}
		out = append(out, truth.ExpandedEvent{Start: start, End: start.Add(duration)})
	}
	return out, nil
}

type ruleParts struct {
	body  []string
	count mo.Option[int]
	until string
}

func parseRule(rule string) (*ruleParts, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	if trimmed == "" {
		return nil, truth.NewError(truth.ErrInvalidRule, "empty RRULE")
	}

	parts := &ruleParts{}
	freq := ""
	for _, token := range strings.Split(trimmed, ";") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		name, value, ok := strings.Cut(token, "=")
		if !ok || value == "" {
			return nil, truth.NewError(truth.ErrInvalidRule, "malformed RRULE part %q", token)
		}
		switch strings.ToUpper(name) {
		case "FREQ":
			freq = strings.ToUpper(value)
			parts.body = append(parts.body, "FREQ="+freq)
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, truth.NewError(truth.ErrInvalidRule, "invalid COUNT %q", value)
			}
			parts.count = mo.Some(n)
		case "UNTIL":
			parts.until = value
		default:
			parts.body = append(parts.body, token)
		}
	}

	switch freq {
	case "DAILY", "WEEKLY", "MONTHLY", "YEARLY":
	case "":
		return nil, truth.NewError(truth.ErrInvalidRule, "RRULE %q is missing FREQ", rule)
	default:
		return nil, truth.NewError(truth.ErrInvalidRule, "unsupported FREQ %q", freq)
	}
	return parts, nil
}

// parseUntil accepts both iCalendar compact and RFC 3339-style
// datetimes. A trailing "Z" marks the bound as a UTC instant.
func parseUntil(value string) (time.Time, bool, error) {
	v := strings.TrimSpace(value)
	isUTC := strings.HasSuffix(v, "Z")
	layouts := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t, isUTC, nil
		}
	}
	return time.Time{}, false, truth.NewError(truth.ErrInvalidRule, "invalid UNTIL %q", value)
}

// naiveUTC re-expresses the wall-clock fields of t in the UTC frame,
// dropping sub-second precision.
func naiveUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d, h, mi, s, 0, time.UTC)
}
