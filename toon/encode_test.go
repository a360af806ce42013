package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShapes(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"empty object", `{}`, ""},
		{"scalar field", `{"a":1}`, "a: 1"},
		{"two fields", `{"a":1,"b":"x"}`, "a: 1\nb: x"},
		{"empty nested object", `{"a":{}}`, "a:"},
		{"nested object", `{"a":{"b":1}}`, "a:\n  b: 1"},
		{"deep nesting", `{"a":{"b":{"c":"d"}}}`, "a:\n  b:\n    c: d"},
		{"empty array", `{"a":[]}`, "a[0]:"},
		{"inline array", `{"tags":["x","y"]}`, "tags[2]: x,y"},
		{"inline mixed scalars", `{"v":[1,true,null,"s"]}`, "v[4]: 1,true,null,s"},
		{
			"tabular array",
			`{"users":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`,
			"users[2]{id,name}:\n  1,Alice\n  2,Bob",
		},
		{
			"expanded array",
			`{"items":[{"a":1,"b":{"c":2}},5]}`,
			"items[2]:\n  - a: 1\n    b:\n      c: 2\n  - 5",
		},
		{
			"expanded with nested array",
			`{"items":[{"a":[1,{"x":2}]}]}`,
			"items[1]:\n  - a[2]:\n      - 1\n      - x: 2",
		},
		{
			"list of empty objects",
			`{"items":[{},1]}`,
			"items[2]:\n  -\n  - 1",
		},
		{
			"nested bare arrays",
			`{"m":[[1,2],[3]]}`,
			"m[2]:\n  - [2]: 1,2\n  - [1]: 3",
		},
		{"root scalar", `42`, "42"},
		{"root string", `"hi"`, "hi"},
		{"root inline array", `[1,2,3]`, "[3]: 1,2,3"},
		{"root empty array", `[]`, "[0]:"},
		{
			"root tabular array",
			`[{"id":1},{"id":2}]`,
			"[2]{id}:\n  1\n  2",
		},
		{
			"root expanded array",
			`[1,{"a":2}]`,
			"[2]:\n  - 1\n  - a: 2",
		},
		{"quoted key", `{"a b":1}`, `"a b": 1`},
		{"dotted key stays bare", `{"a.b":1}`, "a.b: 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeStringQuoting(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"keyword literal", `{"val":"true"}`, `val: "true"`},
		{"false literal", `{"val":"false"}`, `val: "false"`},
		{"null literal", `{"val":"null"}`, `val: "null"`},
		{"empty string", `{"v":""}`, `v: ""`},
		{"leading space", `{"v":" x"}`, `v: " x"`},
		{"numeric string", `{"v":"42"}`, `v: "42"`},
		{"leading zero", `{"v":"05"}`, `v: "05"`},
		{"exponent form", `{"v":"1e3"}`, `v: "1e3"`},
		{"leading dash", `{"v":"-dash"}`, `v: "-dash"`},
		{"contains colon", `{"v":"a:b"}`, `v: "a:b"`},
		{"comma in document position", `{"v":"a,b"}`, "v: a,b"},
		{"comma in inline array", `{"v":["a,b"]}`, `v[1]: "a,b"`},
		{"colon in inline array", `{"v":["a:b"]}`, "v[1]: a:b"},
		{"bracket", `{"v":"[x]"}`, `v: "[x]"`},
		{"newline escape", `{"v":"a\nb"}`, `v: "a\nb"`},
		{"plain words", `{"v":"hello world"}`, "v: hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeNumbers(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"integer keeps no fraction", `{"n":2}`, "n: 2"},
		{"float keeps fraction", `{"f":2.0}`, "f: 2.0"},
		{"negative zero normalizes", `{"f":-0.0}`, "f: 0.0"},
		{"plain float", `{"f":3.14}`, "f: 3.14"},
		{"negative int", `{"n":-7}`, "n: -7"},
		{"exponent becomes plain", `{"f":1.5e2}`, "f: 150.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeNoTrailingWhitespace(t *testing.T) {
	inputs := []string{
		`{"a":[]}`,
		`{"items":[{},{"a":1}]}`,
		`{"users":[{"id":1},{"id":2}]}`,
		`{"a":{"b":{}}}`,
	}
	for _, in := range inputs {
		got, err := Encode(in)
		require.NoError(t, err)
		assert.False(t, strings.HasSuffix(got, "\n"), "document ends with newline: %q", got)
		for _, line := range strings.Split(got, "\n") {
			assert.Equal(t, strings.TrimRight(line, " \t"), line, "trailing whitespace in %q", line)
		}
	}
}

func TestEncodeTabularRequiresUniformRows(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{
			"key order differs",
			`{"u":[{"a":1,"b":2},{"b":3,"a":4}]}`,
			"u[2]:\n  - a: 1\n    b: 2\n  - b: 3\n    a: 4",
		},
		{
			"missing key",
			`{"u":[{"a":1,"b":2},{"a":3}]}`,
			"u[2]:\n  - a: 1\n    b: 2\n  - a: 3",
		},
		{
			"nested value",
			`{"u":[{"a":1},{"a":{"b":2}}]}`,
			"u[2]:\n  - a: 1\n  - a:\n      b: 2",
		},
		{
			"unsafe column name",
			`{"u":[{"a b":1},{"a b":2}]}`,
			"u[2]:\n  - \"a b\": 1\n  - \"a b\": 2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.json)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRejectsMalformedJSON(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":}`, `[1,]`, `{"a":1} extra`} {
		_, err := Encode(in)
		require.Error(t, err, "input %q", in)
		var terr *Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, ErrJSONParse, terr.Kind)
	}
}

func TestEncodeJSONCompactAndIndent(t *testing.T) {
	v := NewObject(
		Member{Key: "a", Value: NewInt(1)},
		Member{Key: "b", Value: NewArray(NewString("x"), NewFloat(2))},
		Member{Key: "c", Value: NewObject()},
	)
	assert.Equal(t, `{"a":1,"b":["x",2.0],"c":{}}`, EncodeJSON(v))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    \"x\",\n    2.0\n  ],\n  \"c\": {}\n}", EncodeJSONIndent(v))
}
