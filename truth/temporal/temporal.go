// Package temporal provides pure timezone conversion, duration
// computation and wall-clock timestamp adjustment. All operations are
// clock-free: every "now" is an explicit argument.
package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tempuskit/libtempus/truth"
	"github.com/tempuskit/libtempus/truth/tz"
)

// Conversion is the result of mapping an instant into a target zone.
type Conversion struct {
	UTC       time.Time
	Local     time.Time
	Offset    string // e.g. "-05:00"
	DSTActive bool
}

// Duration is the signed difference between two instants.
type Duration struct {
	TotalSeconds  int64
	Days          int
	Hours         int
	Minutes       int
	Seconds       int
	HumanReadable string
}

// Adjustment is the result of applying a compound delta to an instant.
type Adjustment struct {
	AdjustedUTC       time.Time
	AdjustedLocal     time.Time
	AdjustmentApplied string
}

// ParseInstant parses an RFC 3339 datetime with an explicit offset or
// trailing Z.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, truth.WrapError(truth.ErrInvalidFormat, err, "invalid RFC 3339 datetime %q", s)
	}
	return t, nil
}

// ConvertTimezone maps an RFC 3339 instant into the target zone.
func ConvertTimezone(instant, targetZone string) (*Conversion, error) {
	t, err := ParseInstant(instant)
	if err != nil {
		return nil, err
	}
	loc, err := tz.LoadLocation(targetZone)
	if err != nil {
		return nil, err
	}
	local := t.In(loc)
	_, offset := local.Zone()
	return &Conversion{
		UTC:       t.UTC(),
		Local:     local,
		Offset:    formatOffset(offset),
		DSTActive: local.IsDST(),
	}, nil
}

// ComputeDuration returns the signed difference b - a, decomposed into
// days, hours, minutes and seconds. The sign is carried by
// TotalSeconds and by the largest nonzero unit field.
func ComputeDuration(a, b string) (*Duration, error) {
	ta, err := ParseInstant(a)
	if err != nil {
		return nil, err
	}
	tb, err := ParseInstant(b)
	if err != nil {
		return nil, err
	}

	total := int64(tb.Sub(ta) / time.Second)
	abs := total
	if abs < 0 {
		abs = -abs
	}
	days := int(abs / 86400)
	hours := int(abs % 86400 / 3600)
	minutes := int(abs % 3600 / 60)
	seconds := int(abs % 60)

	d := &Duration{
		TotalSeconds:  total,
		Days:          days,
		Hours:         hours,
		Minutes:       minutes,
		Seconds:       seconds,
		HumanReadable: humanize(total, days, hours, minutes, seconds),
	}
	if total < 0 {
		switch {
		case d.Days != 0:
			d.Days = -d.Days
		case d.Hours != 0:
			d.Hours = -d.Hours
		case d.Minutes != 0:
			d.Minutes = -d.Minutes
		case d.Seconds != 0:
			d.Seconds = -d.Seconds
		}
	}
	return d, nil
}

func humanize(total int64, days, hours, minutes, seconds int) string {
	var parts []string
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		s := fmt.Sprintf("%d %s", n, unit)
		if n != 1 {
			s += "s"
		}
		parts = append(parts, s)
	}
	add(days, "day")
	add(hours, "hour")
	add(minutes, "minute")
	add(seconds, "second")
	if len(parts) == 0 {
		return "0 seconds"
	}
	out := strings.Join(parts, ", ")
	if total < 0 {
		out = "-" + out
	}
	return out
}

var deltaPattern = regexp.MustCompile(`^([+-])(?:(\d+)d)?(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?$`)

// parseDelta splits a compound delta like "+1d2h30m" into a day count
// and a sub-day duration, both signed.
func parseDelta(delta string) (int, time.Duration, error) {
	m := deltaPattern.FindStringSubmatch(delta)
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return 0, 0, truth.NewError(truth.ErrInvalidFormat, "invalid delta %q, expected e.g. +1d2h30m", delta)
	}
	sign := 1
	if m[1] == "-" {
		sign = -1
	}
	num := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	days := sign * num(m[2])
	rest := time.Duration(num(m[3]))*time.Hour +
		time.Duration(num(m[4]))*time.Minute +
		time.Duration(num(m[5]))*time.Second
	return days, time.Duration(sign) * rest, nil
}

// AdjustTimestamp applies a signed compound delta to an instant in the
// given zone. Day components move the local wall clock by whole
// calendar days, so crossing a DST transition keeps the local time of
// day; hour, minute and second components are added as real elapsed
// time afterwards.
func AdjustTimestamp(instant, delta, zone string) (*Adjustment, error) {
	t, err := ParseInstant(instant)
	if err != nil {
		return nil, err
	}
	loc, err := tz.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	days, rest, err := parseDelta(strings.TrimSpace(delta))
	if err != nil {
		return nil, err
	}

	local := t.In(loc)
	if days != 0 {
		local = local.AddDate(0, 0, days)
	}
	if rest != 0 {
		local = local.Add(rest)
	}
	return &Adjustment{
		AdjustedUTC:       local.UTC(),
		AdjustedLocal:     local.In(loc),
		AdjustmentApplied: delta,
	}, nil
}

func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, seconds%3600/60)
}
