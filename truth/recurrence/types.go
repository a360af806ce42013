package recurrence

import (
	"time"

	"github.com/samber/mo"

	"github.com/tempuskit/libtempus/truth/tz"
)

// Input describes one recurring event to expand.
type Input struct {
	// Rule is the RFC 5545 RRULE body without the "RRULE:" prefix,
	// e.g. "FREQ=WEEKLY;BYDAY=MO,WE". A leading "RRULE:" is tolerated.
	Rule string

	// DTStart is the first nominal occurrence as a naive local
	// wall-clock time in Timezone. Its own Location is ignored.
	DTStart time.Time

	// DurationMinutes is the length of each occurrence, applied after
	// zone resolution. Must be positive.
	DurationMinutes int

	// Timezone is the IANA zone id the rule runs in.
	Timezone string

	// Until optionally bounds the expansion when the rule body carries
	// no UNTIL of its own. A trailing "Z" marks a UTC instant applied
	// to resolved starts; otherwise the value is a local wall-clock
	// bound. Both are inclusive. The rule body's own UNTIL wins.
	Until string

	// Count optionally injects a COUNT when the rule body has none.
	Count mo.Option[int]

	// MaxCount is a hard ceiling on returned occurrences, applied
	// after COUNT and UNTIL.
	MaxCount mo.Option[int]

	// ExDates are naive local wall-clock times to exclude. A candidate
	// is excluded on exact wall-clock equality before zone resolution.
	ExDates []time.Time

	// Policy selects gap and ambiguity handling. Defaults to WallClock.
	Policy mo.Option[tz.Policy]
}
