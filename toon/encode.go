package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Encode parses jsonText and returns its TOON rendering.
func Encode(jsonText string) (string, error) {
	v, err := ParseJSON(jsonText)
	if err != nil {
		return "", err
	}
	return EncodeValue(v), nil
}

// EncodeValue renders a Value tree as TOON text. Lines join with \n,
// carry no trailing whitespace, and the document does not end with a
// newline. An empty root object encodes to the empty string.
func EncodeValue(v Value) string {
	var sb strings.Builder
	switch v.kind {
	case KindObject:
		encodeObjectFields(v.obj, 0, &sb)
	case KindArray:
		encodeArrayField(v.arr, 0, &sb)
	default:
		encodeScalar(v, ctxDocument, &sb)
	}
	return sb.String()
}

// quoteContext selects the active delimiter for string quoting. A
// colon forces quotes in document position; a comma forces quotes
// inside inline arrays and tabular cells.
type quoteContext int

const (
	ctxDocument quoteContext = iota
	ctxInlineArray
	ctxTabularCell
)

func encodeObjectFields(members []Member, depth int, sb *strings.Builder) {
	indent := strings.Repeat("  ", depth)
	for i, m := range members {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(indent)
		writeKey(m.Key, sb)
		encodeFieldValue(m.Value, depth, sb)
	}
}

func encodeFieldValue(v Value, depth int, sb *strings.Builder) {
	switch v.kind {
	case KindObject:
		sb.WriteByte(':')
		if len(v.obj) > 0 {
			sb.WriteByte('\n')
			encodeObjectFields(v.obj, depth+1, sb)
		}
	case KindArray:
		encodeArrayField(v.arr, depth, sb)
	default:
		sb.WriteString(": ")
		encodeScalar(v, ctxDocument, sb)
	}
}

// encodeArrayField picks the most compact array form: tabular when
// every element is an object with the same keys in the same order and
// scalar values only, inline when every element is scalar, expanded
// otherwise. The body indents one level below depth.
func encodeArrayField(arr []Value, depth int, sb *strings.Builder) {
	if len(arr) == 0 {
		sb.WriteString("[0]:")
		return
	}
	if fields, ok := detectTabular(arr); ok {
		fmt.Fprintf(sb, "[%d]{%s}:", len(arr), strings.Join(fields, ","))
		encodeTabularRows(arr, depth, sb)
		return
	}
	if allScalars(arr) {
		fmt.Fprintf(sb, "[%d]: ", len(arr))
		encodeInlineValues(arr, sb)
		return
	}
	fmt.Fprintf(sb, "[%d]:", len(arr))
	encodeListItems(arr, depth, sb)
}

func encodeInlineValues(arr []Value, sb *strings.Builder) {
	for i, v := range arr {
		if i > 0 {
			sb.WriteByte(',')
		}
		encodeScalar(v, ctxInlineArray, sb)
	}
}

func encodeTabularRows(arr []Value, depth int, sb *strings.Builder) {
	rowIndent := strings.Repeat("  ", depth+1)
	for _, row := range arr {
		sb.WriteByte('\n')
		sb.WriteString(rowIndent)
		for i, m := range row.obj {
			if i > 0 {
				sb.WriteByte(',')
			}
			encodeScalar(m.Value, ctxTabularCell, sb)
		}
	}
}

// encodeListItems emits expanded list items at one level below depth.
// An object item puts its first field on the "- " line; sibling
// fields align with the content column after the marker.
func encodeListItems(arr []Value, depth int, sb *strings.Builder) {
	itemIndent := strings.Repeat("  ", depth+1)
	for _, item := range arr {
		sb.WriteByte('\n')
		sb.WriteString(itemIndent)
		if item.kind == KindObject && len(item.obj) == 0 {
			sb.WriteString("-")
			continue
		}
		sb.WriteString("- ")
		switch item.kind {
		case KindObject:
			for i, m := range item.obj {
				if i > 0 {
					sb.WriteByte('\n')
					sb.WriteString(itemIndent)
					sb.WriteString("  ")
				}
				writeKey(m.Key, sb)
				encodeItemFieldValue(m.Value, depth+1, sb)
			}
		case KindArray:
			if len(item.arr) == 0 {
				sb.WriteString("[0]:")
			} else if allScalars(item.arr) {
				fmt.Fprintf(sb, "[%d]: ", len(item.arr))
				encodeInlineValues(item.arr, sb)
			} else {
				fmt.Fprintf(sb, "[%d]:", len(item.arr))
				encodeListItems(item.arr, depth+1, sb)
			}
		default:
			encodeScalar(item, ctxDocument, sb)
		}
	}
}

// encodeItemFieldValue encodes a field of an object that starts on a
// "- " line. depth is the list item's depth; nested bodies indent two
// levels below it to clear the marker offset.
func encodeItemFieldValue(v Value, depth int, sb *strings.Builder) {
	switch v.kind {
	case KindObject:
		sb.WriteByte(':')
		if len(v.obj) == 0 {
			return
		}
		sb.WriteByte('\n')
		nested := strings.Repeat("  ", depth+2)
		for i, m := range v.obj {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(nested)
			writeKey(m.Key, sb)
			encodeFieldValue(m.Value, depth+2, sb)
		}
	case KindArray:
		encodeArrayField(v.arr, depth+1, sb)
	default:
		sb.WriteString(": ")
		encodeScalar(v, ctxDocument, sb)
	}
}

func encodeScalar(v Value, ctx quoteContext, sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.f))
	case KindString:
		if needsQuoting(v.s, ctx) {
			writeQuoted(sb, v.s)
		} else {
			sb.WriteString(v.s)
		}
	default:
		sb.WriteString("null")
	}
}

// formatFloat renders a float with no exponent and always at least
// one fractional digit, so the decoder recovers the float kind.
// Negative zero normalizes to 0.0.
func formatFloat(f float64) string {
	if f == 0 {
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// needsQuoting reports whether a bare rendering of s would be
// ambiguous in the given context: it could read as a keyword or
// number, collide with structural characters, or split on the active
// delimiter.
func needsQuoting(s string, ctx quoteContext) bool {
	if s == "" {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	if s == "true" || s == "false" || s == "null" {
		return true
	}
	if looksNumeric(s) {
		return true
	}
	if strings.ContainsAny(s, "\\\"[]{}\n\r\t") {
		return true
	}
	if s[0] == '-' {
		return true
	}
	if ctx == ctxDocument {
		return strings.ContainsRune(s, ':')
	}
	return strings.ContainsRune(s, ',')
}

// looksNumeric matches integers, floats and leading-zero forms like
// "05" that the decoder would otherwise read as numbers.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	rest := s
	if rest[0] == '-' {
		rest = rest[1:]
	}
	if rest == "" {
		return false
	}
	if len(rest) > 1 && rest[0] == '0' && rest[1] != '.' {
		return true
	}
	hasDot, hasExp := false, false
	hasDigit := false
	for i := 0; i < len(rest); i++ {
		switch c := rest[i]; {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '.' && !hasDot && !hasExp:
			hasDot = true
		case (c == 'e' || c == 'E') && !hasExp && i > 0:
			hasExp = true
		case (c == '+' || c == '-') && hasExp:
		default:
			return false
		}
	}
	return hasDigit
}

var unquotedKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

func writeKey(key string, sb *strings.Builder) {
	if unquotedKeyPattern.MatchString(key) {
		sb.WriteString(key)
		return
	}
	writeQuoted(sb, key)
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}

// detectTabular reports whether every element is an object with the
// same keys in the same order, every value scalar, and every key
// emittable bare in the header.
func detectTabular(arr []Value) ([]string, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	first := arr[0]
	if first.kind != KindObject || len(first.obj) == 0 {
		return nil, false
	}
	fields := make([]string, len(first.obj))
	for i, m := range first.obj {
		if !isScalar(m.Value) || !unquotedKeyPattern.MatchString(m.Key) {
			return nil, false
		}
		fields[i] = m.Key
	}
	for _, item := range arr[1:] {
		if item.kind != KindObject || len(item.obj) != len(fields) {
			return nil, false
		}
		for i, m := range item.obj {
			if m.Key != fields[i] || !isScalar(m.Value) {
				return nil, false
			}
		}
	}
	return fields, true
}

func isScalar(v Value) bool {
	return v.kind != KindArray && v.kind != KindObject
}

func allScalars(arr []Value) bool {
	for _, v := range arr {
		if !isScalar(v) {
			return false
		}
	}
	return true
}
