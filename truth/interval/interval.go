// Package interval implements merge, intersection and gap computation
// on half-open [start, end) intervals over the UTC timeline.
package interval

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End). End is exclusive.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsEmpty reports whether the interval covers no instant.
func (iv Interval) IsEmpty() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports strict overlap. Touching intervals do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Clip restricts the interval to the window. The result may be empty.
func (iv Interval) Clip(window Interval) Interval {
	out := iv
	if out.Start.Before(window.Start) {
		out.Start = window.Start
	}
	if out.End.After(window.End) {
		out.End = window.End
	}
	return out
}

// Normalize sorts intervals by start and merges overlapping and
// adjacent ones (a.End == b.Start merges). Empty intervals are
// dropped. The input is not modified.
func Normalize(xs []Interval) []Interval {
	sorted := make([]Interval, 0, len(xs))
	for _, iv := range xs {
		if !iv.IsEmpty() {
			sorted = append(sorted, iv)
		}
	}
	sortByStart(sorted)

	out := make([]Interval, 0, len(sorted))
	for _, iv := range sorted {
		if n := len(out); n > 0 && !out[n-1].End.Before(iv.Start) {
			if iv.End.After(out[n-1].End) {
				out[n-1].End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Intersect returns every pairwise strict overlap between xs and ys.
// Results are ordered by overlap start, then end.
func Intersect(xs, ys []Interval) []Interval {
	var out []Interval
	for _, a := range xs {
		for _, b := range ys {
			if !a.Overlaps(b) {
				continue
			}
			ov := Interval{Start: laterOf(a.Start, b.Start), End: earlierOf(a.End, b.End)}
			if !ov.IsEmpty() {
				out = append(out, ov)
			}
		}
	}
	sortByStart(out)
	return out
}

// Gaps returns the complement of xs within window. xs must already be
// normalized (disjoint, ascending). Zero-length gaps are dropped.
func Gaps(xs []Interval, window Interval) []Interval {
	if window.IsEmpty() {
		return nil
	}
	var out []Interval
	cursor := window.Start
	for _, iv := range xs {
		clipped := iv.Clip(window)
		if clipped.IsEmpty() {
			continue
		}
		if clipped.Start.After(cursor) {
			out = append(out, Interval{Start: cursor, End: clipped.Start})
		}
		if clipped.End.After(cursor) {
			cursor = clipped.End
		}
	}
	if window.End.After(cursor) {
		out = append(out, Interval{Start: cursor, End: window.End})
	}
	return out
}

func sortByStart(xs []Interval) {
	sort.Slice(xs, func(i, j int) bool {
		if xs[i].Start.Equal(xs[j].Start) {
			return xs[i].End.Before(xs[j].End)
		}
		return xs[i].Start.Before(xs[j].Start)
	})
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
