// Package availability merges labelled event streams into busy and
// free time, detects pairwise conflicts and searches for free slots.
package availability

import (
	"sort"
	"time"

	"github.com/samber/mo"

	"github.com/tempuskit/libtempus/truth"
	"github.com/tempuskit/libtempus/truth/interval"
)

// Privacy selects how much per-source detail the merge reveals.
type Privacy int

const (
	// Opaque hides sources: busy blocks carry no count.
	Opaque Privacy = iota
	// Full annotates each busy block with the number of distinct
	// contributing streams.
	Full
)

func (p Privacy) String() string {
	if p == Full {
		return "full"
	}
	return "opaque"
}

// BusyBlock is a merged busy range. SourceCount is the number of
// distinct streams contributing to the block under Full privacy and
// zero under Opaque.
type BusyBlock struct {
	Start       time.Time
	End         time.Time
	SourceCount int
}

// FreeSlot is an open range between busy blocks.
type FreeSlot struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
}

// Result is the merged availability over a window. Busy and Free
// together partition [WindowStart, WindowEnd) exactly.
type Result struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Privacy     Privacy
	Busy        []BusyBlock
	Free        []FreeSlot
}

// Conflict is a strictly overlapping pair of events, one from each
// input list.
type Conflict struct {
	A              truth.ExpandedEvent
	B              truth.ExpandedEvent
	OverlapMinutes int
}

// Merge combines the streams' events inside the window under the given
// privacy mode.
func Merge(streams []truth.EventStream, windowStart, windowEnd time.Time, privacy Privacy) (*Result, error) {
	if !windowEnd.After(windowStart) {
		return nil, truth.NewError(truth.ErrInvalidFormat, "window end %s is not after start %s",
			windowEnd.Format(time.RFC3339), windowStart.Format(time.RFC3339))
	}
	window := interval.Interval{Start: windowStart, End: windowEnd}

	var busy []BusyBlock
	if privacy == Full {
		busy = sweepCounts(streams, window)
	} else {
		var all []interval.Interval
		for _, s := range streams {
			for _, ev := range s.Events {
				clipped := interval.Interval{Start: ev.Start, End: ev.End}.Clip(window)
				if !clipped.IsEmpty() {
					all = append(all, clipped)
				}
			}
		}
		for _, iv := range interval.Normalize(all) {
			busy = append(busy, BusyBlock{Start: iv.Start, End: iv.End})
		}
	}

	union := make([]interval.Interval, len(busy))
	for i, b := range busy {
		union[i] = interval.Interval{Start: b.Start, End: b.End}
	}
	free := slotsFromGaps(interval.Gaps(interval.Normalize(union), window))

	return &Result{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Privacy:     privacy,
		Busy:        busy,
		Free:        free,
	}, nil
}

// sweepCounts walks stream-tagged endpoints in instant order and emits
// blocks annotated with the count of distinct active streams. Each
// stream's events are normalized first so overlapping events within
// one stream count once. Adjacent equal-count blocks merge.
func sweepCounts(streams []truth.EventStream, window interval.Interval) []BusyBlock {
	type boundary struct {
		at    time.Time
		delta int
	}
	var bounds []boundary
	for _, s := range streams {
		var ivs []interval.Interval
		for _, ev := range s.Events {
			clipped := interval.Interval{Start: ev.Start, End: ev.End}.Clip(window)
			if !clipped.IsEmpty() {
				ivs = append(ivs, clipped)
			}
		}
		for _, iv := range interval.Normalize(ivs) {
			bounds = append(bounds, boundary{at: iv.Start, delta: 1}, boundary{at: iv.End, delta: -1})
		}
	}
	sort.Slice(bounds, func(i, j int) bool {
		if bounds[i].at.Equal(bounds[j].at) {
			return bounds[i].delta < bounds[j].delta
		}
		return bounds[i].at.Before(bounds[j].at)
	})

	var out []BusyBlock
	count := 0
	var prev time.Time
	for i := 0; i < len(bounds); {
		at := bounds[i].at
		if count > 0 && at.After(prev) {
			if n := len(out); n > 0 && out[n-1].End.Equal(prev) && out[n-1].SourceCount == count {
				out[n-1].End = at
			} else {
				out = append(out, BusyBlock{Start: prev, End: at, SourceCount: count})
			}
		}
		for i < len(bounds) && bounds[i].at.Equal(at) {
			count += bounds[i].delta
			i++
		}
		prev = at
	}
	return out
}

// FindConflicts reports every strictly overlapping pair between the
// two lists, ordered by overlap start. Touching events never conflict.
func FindConflicts(eventsA, eventsB []truth.ExpandedEvent) []Conflict {
	var out []Conflict
	for _, a := range eventsA {
		for _, b := range eventsB {
			if !a.Overlaps(b) {
				continue
			}
			start := laterOf(a.Start, b.Start)
			end := earlierOf(a.End, b.End)
			out = append(out, Conflict{
				A:              a,
				B:              b,
				OverlapMinutes: int(end.Sub(start) / time.Minute),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si := laterOf(out[i].A.Start, out[i].B.Start)
		sj := laterOf(out[j].A.Start, out[j].B.Start)
		return si.Before(sj)
	})
	return out
}

// FindFreeSlots returns the gaps between the merged events inside the
// window.
func FindFreeSlots(events []truth.ExpandedEvent, windowStart, windowEnd time.Time) []FreeSlot {
	window := interval.Interval{Start: windowStart, End: windowEnd}
	if window.IsEmpty() {
		return nil
	}
	var ivs []interval.Interval
	for _, ev := range events {
		clipped := interval.Interval{Start: ev.Start, End: ev.End}.Clip(window)
		if !clipped.IsEmpty() {
			ivs = append(ivs, clipped)
		}
	}
	return slotsFromGaps(interval.Gaps(interval.Normalize(ivs), window))
}

// FindFirstFreeSlot returns the earliest free slot of at least
// minDurationMinutes, or None.
func FindFirstFreeSlot(events []truth.ExpandedEvent, windowStart, windowEnd time.Time, minDurationMinutes int) mo.Option[FreeSlot] {
	for _, slot := range FindFreeSlots(events, windowStart, windowEnd) {
		if slot.DurationMinutes >= minDurationMinutes {
			return mo.Some(slot)
		}
	}
	return mo.None[FreeSlot]()
}

// FindFirstFreeAcross pools all streams' events and returns the
// earliest slot free in every stream at once.
func FindFirstFreeAcross(streams []truth.EventStream, windowStart, windowEnd time.Time, minDurationMinutes int) mo.Option[FreeSlot] {
	var all []truth.ExpandedEvent
	for _, s := range streams {
		all = append(all, s.Events...)
	}
	return FindFirstFreeSlot(all, windowStart, windowEnd, minDurationMinutes)
}

func slotsFromGaps(gaps []interval.Interval) []FreeSlot {
	out := make([]FreeSlot, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, FreeSlot{
			Start:           g.Start,
			End:             g.End,
			DurationMinutes: int(g.Duration() / time.Minute),
		})
	}
	return out
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
