// Package truth holds the shared types of the deterministic calendar
// computation engine. Subpackages implement recurrence expansion,
// interval algebra, availability merging and temporal arithmetic; this
// package defines the value types they exchange.
package truth

import "time"

// ExpandedEvent is a single concrete occurrence of an event, expressed
// as a half-open instant interval [Start, End).
type ExpandedEvent struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the occurrence.
func (e ExpandedEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether two occurrences share any instant. Touching
// boundaries (e.End == o.Start) do not overlap.
func (e ExpandedEvent) Overlaps(o ExpandedEvent) bool {
	return e.Start.Before(o.End) && o.Start.Before(e.End)
}

// EventStream is a named sequence of expanded events, typically one
// calendar's busy time.
type EventStream struct {
	StreamID string
	Events   []ExpandedEvent
}
