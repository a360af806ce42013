package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempuskit/libtempus/truth"
)

func calendar(body ...string) string {
	lines := append([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//libtempus//EN",
	}, body...)
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func parseOne(t *testing.T, body ...string) Event {
	t.Helper()
	events, err := Parse(strings.NewReader(calendar(body...)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestParseRecurringEvent(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:ev1",
		"SUMMARY:Standup",
		"DTSTART;TZID=America/New_York:20250106T093000",
		"DTEND;TZID=America/New_York:20250106T100000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=3",
		"EXDATE;TZID=America/New_York:20250113T093000",
		"END:VEVENT",
	)
	assert.Equal(t, "ev1", ev.UID)
	assert.Equal(t, "Standup", ev.Summary)
	assert.Equal(t, "America/New_York", ev.Timezone)
	assert.Equal(t, time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), ev.End)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO;COUNT=3", ev.Rule)
	require.Len(t, ev.ExDates, 1)
	assert.Equal(t, time.Date(2025, 1, 13, 9, 30, 0, 0, time.UTC), ev.ExDates[0])
	assert.False(t, ev.AllDay)

	in := ev.RecurrenceInput()
	assert.Equal(t, 30, in.DurationMinutes)
	assert.Equal(t, "America/New_York", in.Timezone)
}

func TestParseAllDayEvent(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:allday",
		"DTSTART;VALUE=DATE:20250106",
		"END:VEVENT",
	)
	assert.True(t, ev.AllDay)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), ev.End)
}

func TestParseDurationEvent(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:dur",
		"DTSTART:20250106T120000Z",
		"DURATION:PT1H",
		"END:VEVENT",
	)
	assert.Equal(t, "UTC", ev.Timezone)
	assert.Equal(t, time.Date(2025, 1, 6, 13, 0, 0, 0, time.UTC), ev.End)
}

func TestParseDateOnlyExdate(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:ex",
		"DTSTART;VALUE=DATE:20250106",
		"RRULE:FREQ=DAILY;COUNT=5",
		"EXDATE;VALUE=DATE:20250107,20250108",
		"END:VEVENT",
	)
	require.Len(t, ev.ExDates, 2)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), ev.ExDates[0])
	assert.Equal(t, time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), ev.ExDates[1])
}

func TestParseRejectsRDate(t *testing.T) {
	_, err := Parse(strings.NewReader(calendar(
		"BEGIN:VEVENT",
		"UID:rd",
		"DTSTART:20250106T120000Z",
		"RDATE:20250110T120000Z",
		"END:VEVENT",
	)))
	require.Error(t, err)
	var terr *truth.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, truth.ErrInvalidFormat, terr.Kind)
}

func TestParseRejectsMissingDTStart(t *testing.T) {
	_, err := Parse(strings.NewReader(calendar(
		"BEGIN:VEVENT",
		"UID:nostart",
		"SUMMARY:No start",
		"END:VEVENT",
	)))
	require.Error(t, err)
	var terr *truth.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, truth.ErrInvalidFormat, terr.Kind)
}

func TestExpandSingleEvent(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:single",
		"DTSTART;TZID=America/New_York:20250106T093000",
		"DTEND;TZID=America/New_York:20250106T100000",
		"END:VEVENT",
	)
	stream, err := Expand(ev, mo.None[int]())
	require.NoError(t, err)
	assert.Equal(t, "single", stream.StreamID)
	require.Len(t, stream.Events, 1)
	assert.Equal(t, time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC), stream.Events[0].Start.UTC())
	assert.Equal(t, time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC), stream.Events[0].End.UTC())
}

func TestExpandRecurringEvent(t *testing.T) {
	ev := parseOne(t,
		"BEGIN:VEVENT",
		"UID:weekly",
		"DTSTART;TZID=America/New_York:20250106T093000",
		"DTEND;TZID=America/New_York:20250106T100000",
		"RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=3",
		"EXDATE;TZID=America/New_York:20250113T093000",
		"END:VEVENT",
	)
	stream, err := Expand(ev, mo.None[int]())
	require.NoError(t, err)
	require.Len(t, stream.Events, 2)
	assert.Equal(t, time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC), stream.Events[0].Start.UTC())
	assert.Equal(t, time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC), stream.Events[1].Start.UTC())
}

func TestExpandAll(t *testing.T) {
	events, err := Parse(strings.NewReader(calendar(
		"BEGIN:VEVENT",
		"UID:a",
		"DTSTART:20250106T120000Z",
		"DTEND:20250106T130000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:b",
		"DTSTART:20250107T120000Z",
		"DTEND:20250107T130000Z",
		"END:VEVENT",
	)))
	require.NoError(t, err)
	streams, err := ExpandAll(events, mo.None[int]())
	require.NoError(t, err)
	require.Len(t, streams, 2)
	assert.Equal(t, "a", streams[0].StreamID)
	assert.Equal(t, "b", streams[1].StreamID)
}
