// Package toon implements Token-Oriented Object Notation, a compact
// indentation-based text encoding of JSON-compatible data trees. The
// codec is lossless: object key order and the integer/float
// distinction survive a full encode/decode cycle.
package toon

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// Member is one key-value pair of an object. Objects keep their
// members in insertion order.
type Member struct {
	Key   string
	Value Value
}

// Value is a node of a TOON document tree. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  []Member
}

func NewNull() Value                    { return Value{kind: KindNull} }
func NewBool(b bool) Value              { return Value{kind: KindBool, b: b} }
func NewInt(n int64) Value              { return Value{kind: KindInt, i: n} }
func NewFloat(f float64) Value          { return Value{kind: KindFloat, f: f} }
func NewString(s string) Value          { return Value{kind: KindString, s: s} }
func NewArray(items ...Value) Value     { return Value{kind: KindArray, arr: items} }
func NewObject(members ...Member) Value { return Value{kind: KindObject, obj: members} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) Bool() bool        { return v.b }
func (v Value) Int() int64        { return v.i }
func (v Value) Float() float64    { return v.f }
func (v Value) Str() string       { return v.s }
func (v Value) Items() []Value    { return v.arr }
func (v Value) Members() []Member { return v.obj }

// Get returns the value of the named member of an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep structural equality, including member order and
// the integer/float distinction.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for i := range v.obj {
			if v.obj[i].Key != o.obj[i].Key || !v.obj[i].Value.Equal(o.obj[i].Value) {
				return false
			}
		}
		return true
	}
}
