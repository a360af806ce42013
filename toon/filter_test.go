package toon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterJSON(t *testing.T, jsonText string, patterns []string) string {
	t.Helper()
	v, err := ParseJSON(jsonText)
	require.NoError(t, err)
	return EncodeJSON(FilterFields(v, patterns))
}

func TestFilterFields(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		patterns []string
		want     string
	}{
		{
			"top level key",
			`{"etag":"x","name":"A"}`,
			[]string{"etag"},
			`{"name":"A"}`,
		},
		{
			"no patterns keeps everything",
			`{"a":1,"b":2}`,
			nil,
			`{"a":1,"b":2}`,
		},
		{
			"nested path",
			`{"reminders":{"useDefault":true,"overrides":[]},"name":"A"}`,
			[]string{"reminders.useDefault"},
			`{"reminders":{"overrides":[]},"name":"A"}`,
		},
		{
			"path through array",
			`{"items":[{"etag":"e1","id":1},{"etag":"e2","id":2}]}`,
			[]string{"items.etag"},
			`{"items":[{"id":1},{"id":2}]}`,
		},
		{
			"wildcard removes at every depth",
			`{"etag":"e0","a":{"etag":"e1","b":{"etag":"e2","x":1}}}`,
			[]string{"*.etag"},
			`{"a":{"b":{"x":1}}}`,
		},
		{
			"wildcard inside arrays",
			`{"items":[{"etag":"e","sub":[{"etag":"e","id":1}]}]}`,
			[]string{"*.etag"},
			`{"items":[{"sub":[{"id":1}]}]}`,
		},
		{
			"wildcard with deeper path",
			`{"a":{"creator":{"self":true,"email":"x"}},"creator":{"self":true}}`,
			[]string{"*.creator.self"},
			`{"a":{"creator":{"email":"x"}},"creator":{}}`,
		},
		{
			"literal path does not cross levels",
			`{"a":{"etag":"keep"},"etag":"drop"}`,
			[]string{"etag"},
			`{"a":{"etag":"keep"}}`,
		},
		{
			"scalar members untouched by nested pattern",
			`{"a":1,"b":"x"}`,
			[]string{"a.b"},
			`{"a":1,"b":"x"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterJSON(t, tt.json, tt.patterns))
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	got := filterJSON(t, `{"z":1,"etag":"e","a":2,"m":3}`, []string{"etag"})
	assert.Equal(t, `{"z":1,"a":2,"m":3}`, got)
}

func TestGoogleCalendarPatterns(t *testing.T) {
	event := `{
		"kind": "calendar#event",
		"etag": "\"123\"",
		"id": "abc",
		"htmlLink": "https://example.com/event",
		"iCalUID": "abc@google.com",
		"sequence": 0,
		"summary": "Standup",
		"creator": {"email": "a@example.com", "self": true},
		"organizer": {"email": "a@example.com", "self": true},
		"reminders": {"useDefault": true},
		"attendees": [
			{"email": "b@example.com", "responseStatus": "accepted", "etag": "\"456\""}
		]
	}`
	got := filterJSON(t, event, GoogleCalendarPatterns())
	want := `{"id":"abc","summary":"Standup",` +
		`"creator":{"email":"a@example.com"},` +
		`"organizer":{"email":"a@example.com"},` +
		`"reminders":{},` +
		`"attendees":[{"email":"b@example.com","responseStatus":"accepted"}]}`
	assert.Equal(t, want, got)
}

func TestFilterAndEncode(t *testing.T) {
	got, err := FilterAndEncode(`{"etag":"x","name":"Alice"}`, []string{"etag"})
	require.NoError(t, err)
	assert.Equal(t, "name: Alice", got)

	_, err = FilterAndEncode(`{bad`, []string{"etag"})
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	in := `{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`
	report, err := Stats(in)
	require.NoError(t, err)
	assert.Equal(t, len(in), report.JSONBytes)
	assert.Equal(t, len("users[2]{id,name}:\n  1,Alice\n  2,Bob"), report.ToonBytes)
	assert.Greater(t, report.Reduction, 0.0)

	_, err = Stats(`{bad`)
	require.Error(t, err)
}
