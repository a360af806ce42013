// Package ics ingests iCalendar data and bridges it to the expansion
// engine. Besides UID and SUMMARY, only the properties the engine
// consumes are read: DTSTART, DTEND or DURATION, RRULE and EXDATE; an
// RDATE is only detected so the event can be rejected. Times are kept
// as naive wall clocks in the event's TZID zone until expansion
// resolves them.
package ics

import (
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"

	"github.com/tempuskit/libtempus/truth"
	"github.com/tempuskit/libtempus/truth/recurrence"
	"github.com/tempuskit/libtempus/truth/tz"
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// Event is one VEVENT reduced to what expansion needs. Start and End
// are naive wall-clock times in Timezone.
type Event struct {
	UID      string
	Summary  string
	Timezone string
	Start    time.Time
	End      time.Time
	AllDay   bool
	// Rule is the RRULE body, empty for single events.
	Rule    string
	ExDates []time.Time
}

// Parse decodes one or more VCALENDAR streams from r and returns their
// VEVENTs. A VEVENT carrying RDATE is rejected: the engine has no
// notion of ad-hoc occurrence additions.
func Parse(r io.Reader) ([]Event, error) {
	dec := ical.NewDecoder(r)
	var events []Event
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, truth.WrapError(truth.ErrParse, err, "invalid iCalendar data")
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			ev, err := parseEvent(comp)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func parseEvent(comp *ical.Component) (Event, error) {
	ev := Event{}
	if p := comp.Props.Get(ical.PropUID); p != nil {
		ev.UID = p.Value
	}
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		ev.Summary = p.Value
	}
	if p := comp.Props.Get(ical.PropRecurrenceDates); p != nil && p.Value != "" {
		return Event{}, truth.NewError(truth.ErrInvalidFormat, "event %q uses RDATE, which is not supported", ev.UID)
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return Event{}, truth.NewError(truth.ErrInvalidFormat, "event %q has no DTSTART", ev.UID)
	}
	start, zone, allDay, err := parsePropTime(startProp)
	if err != nil {
		return Event{}, truth.WrapError(truth.ErrParse, err, "event %q has an invalid DTSTART", ev.UID)
	}
	ev.Start = start
	ev.Timezone = zone
	ev.AllDay = allDay

	end, err := parseEnd(comp, ev)
	if err != nil {
		return Event{}, err
	}
	ev.End = end

	if p := comp.Props.Get(ical.PropRecurrenceRule); p != nil && p.Value != "" {
		ev.Rule = p.Value
	}
	for _, p := range comp.Props.Values(ical.PropExceptionDates) {
		dates, err := parseDateList(&p)
		if err != nil {
			return Event{}, truth.WrapError(truth.ErrParse, err, "event %q has an invalid EXDATE", ev.UID)
		}
		ev.ExDates = append(ev.ExDates, dates...)
	}
	return ev, nil
}

func parseEnd(comp *ical.Component, ev Event) (time.Time, error) {
	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		end, _, endIsDate, err := parsePropTime(p)
		if err != nil {
			return time.Time{}, truth.WrapError(truth.ErrParse, err, "event %q has an invalid DTEND", ev.UID)
		}
		if ev.AllDay && endIsDate && end.Equal(ev.Start) {
			return ev.Start.AddDate(0, 0, 1), nil
		}
		return end, nil
	}
	if p := comp.Props.Get(ical.PropDuration); p != nil {
		d, err := p.Duration()
		if err != nil {
			return time.Time{}, truth.WrapError(truth.ErrParse, err, "event %q has an invalid DURATION", ev.UID)
		}
		return ev.Start.Add(d), nil
	}
	if ev.AllDay {
		return ev.Start.AddDate(0, 0, 1), nil
	}
	return ev.Start, nil
}

// parsePropTime reads a DATE or DATE-TIME property value as a naive
// wall clock. The returned zone is the TZID parameter, "UTC" for a
// trailing-Z value, and empty when the value is floating.
func parsePropTime(p *ical.Prop) (time.Time, string, bool, error) {
	value := strings.TrimSpace(p.Value)
	zone := paramValue(p, "TZID")
	if isDateValue(p, value) {
		t, err := time.Parse(dateLayout, value)
		return t, zone, true, err
	}
	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(utcLayout, value)
		if zone == "" {
			zone = "UTC"
		}
		return t, zone, false, err
	}
	t, err := time.Parse(dateTimeLayout, value)
	return t, zone, false, err
}

func parseDateList(p *ical.Prop) ([]time.Time, error) {
	var out []time.Time
	for _, part := range strings.Split(p.Value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, _, _, err := parsePropTime(&ical.Prop{Name: p.Name, Params: p.Params, Value: part})
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func isDateValue(p *ical.Prop, value string) bool {
	if v := paramValue(p, "VALUE"); strings.EqualFold(v, "DATE") {
		return true
	}
	return len(value) == len(dateLayout) && !strings.ContainsRune(value, 'T')
}

func paramValue(p *ical.Prop, name string) string {
	if p.Params == nil {
		return ""
	}
	if vs := p.Params[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// RecurrenceInput converts a recurring event into expansion input.
func (e Event) RecurrenceInput() recurrence.Input {
	zone := e.Timezone
	if zone == "" {
		zone = "UTC"
	}
	return recurrence.Input{
		Rule:            e.Rule,
		DTStart:         e.Start,
		DurationMinutes: int(e.End.Sub(e.Start) / time.Minute),
		Timezone:        zone,
		ExDates:         e.ExDates,
	}
}

// Expand turns an event into a stream of concrete occurrences. Single
// events resolve their one start under the WallClock policy; recurring
// events go through the expansion engine with maxCount as the ceiling.
func Expand(e Event, maxCount mo.Option[int]) (truth.EventStream, error) {
	if e.Rule == "" {
		occ, err := expandSingle(e)
		if err != nil {
			return truth.EventStream{}, err
		}
		return truth.EventStream{StreamID: e.UID, Events: occ}, nil
	}
	in := e.RecurrenceInput()
	in.MaxCount = maxCount
	events, err := recurrence.Expand(in)
	if err != nil {
		return truth.EventStream{}, err
	}
	return truth.EventStream{StreamID: e.UID, Events: events}, nil
}

func expandSingle(e Event) ([]truth.ExpandedEvent, error) {
	zone := e.Timezone
	if zone == "" {
		zone = "UTC"
	}
	loc, err := tz.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	start, ok := tz.WallClock.Apply(tz.Resolve(e.Start, loc)).Get()
	if !ok {
		return nil, nil
	}
	return []truth.ExpandedEvent{{Start: start, End: start.Add(e.End.Sub(e.Start))}}, nil
}

// ExpandAll expands every event into its own stream, in input order.
func ExpandAll(events []Event, maxCount mo.Option[int]) ([]truth.EventStream, error) {
	streams := make([]truth.EventStream, 0, len(events))
	for _, e := range events {
		s, err := Expand(e, maxCount)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	return streams, nil
}
