// Package tz resolves local wall-clock datetimes against IANA time zones.
//
// A local datetime is carried as a naive time.Time: its date and clock
// fields are meaningful, its Location is not. Resolve classifies the
// local time as unique, ambiguous (fall-back overlap) or nonexistent
// (spring-forward gap) and returns the candidate instants. A Policy
// decides which candidate, if any, survives.
package tz

import (
	"time"

	"github.com/samber/mo"

	"github.com/tempuskit/libtempus/truth"
)

// Policy controls how gap and ambiguous local times resolve.
type Policy int

const (
	// Skip drops occurrences that fall in a spring-forward gap.
	Skip Policy = iota
	// ShiftForward moves gap occurrences to the first valid instant.
	ShiftForward
	// WallClock keeps the nominal wall-clock time: gaps shift forward
	// to the first valid instant, ambiguities take the earlier instant.
	WallClock
)

func (p Policy) String() string {
	switch p {
	case Skip:
		return "skip"
	case ShiftForward:
		return "shift_forward"
	case WallClock:
		return "wall_clock"
	}
	return "unknown"
}

// Kind classifies a local-to-instant resolution.
type Kind int

const (
	// Unique means the local time maps to exactly one instant.
	Unique Kind = iota
	// Ambiguous means the local time occurs twice (fall-back).
	Ambiguous
	// Gap means the local time does not exist (spring-forward).
	Gap
)

// Resolution is the result of resolving a local datetime in a zone.
type Resolution struct {
	Kind Kind
	// Instants holds the candidate UTC instants. Unique: one entry.
	// Ambiguous: two entries, earlier first. Gap: one entry, the
	// first valid instant at or after the missing local time.
	Instants []time.Time
}

// LoadLocation looks up an IANA zone identifier.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, truth.NewError(truth.ErrInvalidTimezone, "timezone is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, truth.WrapError(truth.ErrInvalidTimezone, err, "unknown timezone %q", name)
	}
	return loc, nil
}

// ParseLocal parses a zoneless RFC 3339 datetime ("2026-03-01T02:00:00")
// into a naive time.Time. Date-only input gets midnight.
func ParseLocal(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, truth.NewError(truth.ErrInvalidFormat, "invalid local datetime %q", s)
}

// probeWindow brackets every real-world transition step around a local
// time. tz offsets move by at most a few hours per transition.
const probeWindow = 26 * time.Hour

// Resolve maps the wall-clock fields of naive onto loc. The Location
// of naive itself is ignored.
func Resolve(naive time.Time, loc *time.Location) Resolution {
	y, month, d := naive.Date()
	h, mi, s := naive.Clock()
	asUTC := time.Date(y, month, d, h, mi, s, naive.Nanosecond(), time.UTC)

	offsets := candidateOffsets(asUTC, loc)
	var matches []time.Time
	for _, off := range offsets {
		inst := asUTC.Add(-time.Duration(off) * time.Second)
		if sameWallClock(inst.In(loc), asUTC) {
			matches = append(matches, inst)
		}
	}

	switch len(matches) {
	case 1:
		return Resolution{Kind: Unique, Instants: matches}
	case 2:
		if matches[1].Before(matches[0]) {
			matches[0], matches[1] = matches[1], matches[0]
		}
		return Resolution{Kind: Ambiguous, Instants: matches}
	}

	// No offset reproduces the wall clock: the local time sits in a
	// spring-forward gap. The first valid instant is the transition
	// itself, found between the two offset interpretations.
	return Resolution{Kind: Gap, Instants: []time.Time{gapTransition(asUTC, offsets, loc)}}
}

// candidateOffsets returns the distinct UTC offsets in effect shortly
// before and after the naive time, smaller probe first.
func candidateOffsets(asUTC time.Time, loc *time.Location) []int {
	_, before := asUTC.Add(-probeWindow).In(loc).Zone()
	_, after := asUTC.Add(probeWindow).In(loc).Zone()
	if before == after {
		return []int{before}
	}
	return []int{before, after}
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ah, ami, as := a.Clock()
	bh, bmi, bs := b.Clock()
	return ay == by && am == bm && ad == bd && ah == bh && ami == bmi && as == bs
}

// gapTransition finds the instant at which the zone switches to its
// post-gap offset, which is the first valid instant for any local time
// inside the gap.
func gapTransition(asUTC time.Time, offsets []int, loc *time.Location) time.Time {
	if len(offsets) < 2 {
		// Cannot happen for a real gap; fall back to the naive frame.
		return asUTC
	}
	offBefore, offAfter := offsets[0], offsets[1]
	// Interpreted with the pre-transition offset the instant lands at
	// or after the switch; with the post-transition offset, before it.
	lo := asUTC.Add(-time.Duration(offAfter) * time.Second)
	hi := asUTC.Add(-time.Duration(offBefore) * time.Second)
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Second)
		if _, off := mid.In(loc).Zone(); off == offAfter {
			hi = mid
		} else {
			lo = mid
		}
	}
	if _, off := lo.In(loc).Zone(); off == offAfter {
		return lo
	}
	return hi
}

// Apply selects the surviving instant for a resolution under the
// policy. A gap under Skip yields None.
func (p Policy) Apply(r Resolution) mo.Option[time.Time] {
	switch r.Kind {
	case Unique, Ambiguous:
		return mo.Some(r.Instants[0])
	case Gap:
		if p == Skip {
			return mo.None[time.Time]()
		}
		return mo.Some(r.Instants[0])
	}
	return mo.None[time.Time]()
}
