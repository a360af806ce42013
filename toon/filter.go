package toon

import "strings"

// FilterFields removes object members matched by dot-separated path
// patterns. A "*" segment matches any key at its level, and a wildcard
// keeps matching deeper levels so "*.etag" strips etag fields at every
// depth. Arrays are transparent: patterns apply to their elements
// unchanged.
func FilterFields(v Value, patterns []string) Value {
	if len(patterns) == 0 {
		return v
	}
	split := make([][]string, len(patterns))
	for i, p := range patterns {
		split[i] = strings.Split(p, ".")
	}
	return applyFilter(v, split)
}

func applyFilter(v Value, patterns [][]string) Value {
	switch v.kind {
	case KindObject:
		return filterObject(v, patterns)
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, it := range v.arr {
			items[i] = applyFilter(it, patterns)
		}
		return NewArray(items...)
	default:
		return v
	}
}

func filterObject(v Value, patterns [][]string) Value {
	var members []Member
	for _, m := range v.obj {
		var child [][]string
		removed := false
		for _, p := range patterns {
			first, rest := p[0], p[1:]
			if first == "*" {
				if len(rest) == 0 {
					removed = true
					break
				}
				if len(rest) == 1 && rest[0] == m.Key {
					removed = true
					break
				}
				if rest[0] == m.Key || rest[0] == "*" {
					child = append(child, rest[1:])
				}
				// The wildcard also stays live for deeper levels.
				child = append(child, p)
				continue
			}
			if first == m.Key {
				if len(rest) == 0 {
					removed = true
					break
				}
				child = append(child, rest)
			}
		}
		if removed {
			continue
		}
		val := m.Value
		if len(child) > 0 {
			child = dropEmpty(child)
			if len(child) > 0 {
				val = applyFilter(val, child)
			}
		}
		members = append(members, Member{Key: m.Key, Value: val})
	}
	return NewObject(members...)
}

func dropEmpty(patterns [][]string) [][]string {
	out := patterns[:0]
	for _, p := range patterns {
		if len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// FilterAndEncode parses jsonText, removes the matched fields, and
// returns the TOON rendering of what remains.
func FilterAndEncode(jsonText string, patterns []string) (string, error) {
	v, err := ParseJSON(jsonText)
	if err != nil {
		return "", err
	}
	return EncodeValue(FilterFields(v, patterns)), nil
}

// GoogleCalendarPatterns returns the filter preset for Google Calendar
// API payloads: sync and hypermedia metadata that carries no scheduling
// information.
func GoogleCalendarPatterns() []string {
	return []string{
		"etag",
		"kind",
		"htmlLink",
		"iCalUID",
		"sequence",
		"reminders.useDefault",
		"creator.self",
		"organizer.self",
		"*.etag",
		"*.kind",
		"*.htmlLink",
		"*.iCalUID",
		"*.sequence",
	}
}
