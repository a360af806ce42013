package toon

import (
	"regexp"
	"strconv"
	"strings"
)

// Decode parses TOON text and returns the compact JSON rendering of
// the decoded tree.
func Decode(toonText string) (string, error) {
	v, err := DecodeValue(toonText)
	if err != nil {
		return "", err
	}
	return EncodeJSON(v), nil
}

// DecodeValue parses TOON text into a Value tree. Grammar violations
// return a ToonParse error carrying the 1-based input line.
func DecodeValue(text string) (Value, error) {
	lines, err := splitLines(text)
	if err != nil {
		return Value{}, err
	}
	p := &parser{lines: lines}
	return p.parseDocument()
}

type docLine struct {
	no     int
	indent int
	text   string
}

func splitLines(text string) ([]docLine, error) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil, nil
	}
	var out []docLine
	for i, raw := range strings.Split(text, "\n") {
		no := i + 1
		j := 0
		for j < len(raw) && (raw[j] == ' ' || raw[j] == '\t') {
			j++
		}
		content := strings.TrimRight(raw[j:], " ")
		if content == "" {
			continue
		}
		lead := raw[:j]
		if strings.ContainsRune(lead, '\t') {
			return nil, parseError(no, "tab character in indentation")
		}
		if len(lead)%2 != 0 {
			return nil, parseError(no, "indentation of %d spaces is not a multiple of two", len(lead))
		}
		out = append(out, docLine{no: no, indent: len(lead), text: content})
	}
	return out, nil
}

type parser struct {
	lines []docLine
}

func (p *parser) parseDocument() (Value, error) {
	if len(p.lines) == 0 {
		return NewObject(), nil
	}
	first := p.lines[0]
	if first.indent != 0 {
		return Value{}, parseError(first.no, "unexpected indentation at document start")
	}
	if strings.HasPrefix(first.text, "[") {
		h, ok := parseArrayHeader(first.text)
		if !ok {
			return Value{}, parseError(first.no, "malformed array header %q", first.text)
		}
		v, next, err := p.parseArrayBody(h, 0, 2, first.no)
		if err != nil {
			return Value{}, err
		}
		if next < len(p.lines) {
			return Value{}, parseError(p.lines[next].no, "content after root array")
		}
		return v, nil
	}
	if len(p.lines) == 1 && !lineHasKey(first.text) {
		return p.parseScalarToken(first.text, ctxDocument, first.no)
	}
	v, _, err := p.parseObject(0, 0)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func (p *parser) parseObject(start, expectedIndent int) (Value, int, error) {
	var members []Member
	i := start
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.indent < expectedIndent {
			break
		}
		if ln.indent > expectedIndent {
			return Value{}, 0, parseError(ln.no, "indentation jumps more than one level")
		}
		if !lineHasKey(ln.text) {
			return Value{}, 0, parseError(ln.no, "expected a key, got %q", ln.text)
		}
		var err error
		i, err = p.parseField(ln.text, i, ln.indent, &members)
		if err != nil {
			return Value{}, 0, err
		}
	}
	return NewObject(members...), i, nil
}

// parseField parses one key-value entry whose text starts at column
// contentCol of line lineIdx. Nested bodies sit at contentCol+2.
// Returns the index of the first line past the entry.
func (p *parser) parseField(content string, lineIdx, contentCol int, members *[]Member) (int, error) {
	no := p.lines[lineIdx].no
	key, rest, err := parseKey(content, no)
	if err != nil {
		return 0, err
	}

	if strings.HasPrefix(rest, "[") {
		h, ok := parseArrayHeader(rest)
		if !ok {
			return 0, parseError(no, "malformed array header after key %q", key)
		}
		v, next, err := p.parseArrayBody(h, lineIdx, contentCol+2, no)
		if err != nil {
			return 0, err
		}
		*members = append(*members, Member{Key: key, Value: v})
		return next, nil
	}

	if rest == ":" {
		childIndent := contentCol + 2
		if lineIdx+1 < len(p.lines) && p.lines[lineIdx+1].indent >= childIndent {
			if p.lines[lineIdx+1].indent > childIndent {
				return 0, parseError(p.lines[lineIdx+1].no, "indentation jumps more than one level")
			}
			v, next, err := p.parseObject(lineIdx+1, childIndent)
			if err != nil {
				return 0, err
			}
			*members = append(*members, Member{Key: key, Value: v})
			return next, nil
		}
		*members = append(*members, Member{Key: key, Value: NewObject()})
		return lineIdx + 1, nil
	}

	if tok, ok := strings.CutPrefix(rest, ": "); ok {
		v, err := p.parseScalarToken(strings.TrimSpace(tok), ctxDocument, no)
		if err != nil {
			return 0, err
		}
		*members = append(*members, Member{Key: key, Value: v})
		return lineIdx + 1, nil
	}

	return 0, parseError(no, "expected ':' after key %q", key)
}

type arrayHeader struct {
	length   int
	fields   []string
	inline   string
	isInline bool
}

func parseArrayHeader(content string) (arrayHeader, bool) {
	if !strings.HasPrefix(content, "[") {
		return arrayHeader{}, false
	}
	end := strings.IndexByte(content, ']')
	if end < 0 {
		return arrayHeader{}, false
	}
	n, err := strconv.Atoi(content[1:end])
	if err != nil || n < 0 {
		return arrayHeader{}, false
	}
	after := content[end+1:]
	if strings.HasPrefix(after, "{") {
		be := strings.IndexByte(after, '}')
		if be < 0 || after[be+1:] != ":" {
			return arrayHeader{}, false
		}
		return arrayHeader{length: n, fields: strings.Split(after[1:be], ",")}, true
	}
	if v, ok := strings.CutPrefix(after, ": "); ok {
		return arrayHeader{length: n, inline: v, isInline: true}, true
	}
	if after == ":" {
		return arrayHeader{length: n}, true
	}
	return arrayHeader{}, false
}

// parseArrayBody interprets the lines following an array header at
// line headerIdx. bodyIndent is the column where rows or list items
// sit. Returns the index of the first line past the body.
func (p *parser) parseArrayBody(h arrayHeader, headerIdx, bodyIndent, headerLine int) (Value, int, error) {
	if h.isInline {
		values, err := p.parseInlineValues(h.inline, ctxInlineArray, headerLine)
		if err != nil {
			return Value{}, 0, err
		}
		if len(values) != h.length {
			return Value{}, 0, parseError(headerLine, "array declares %d values, found %d", h.length, len(values))
		}
		return NewArray(values...), headerIdx + 1, nil
	}

	if h.fields != nil {
		return p.parseTabularRows(h, headerIdx, bodyIndent, headerLine)
	}

	if h.length == 0 {
		return NewArray(), headerIdx + 1, nil
	}

	items, next, err := p.parseListItems(headerIdx+1, bodyIndent)
	if err != nil {
		return Value{}, 0, err
	}
	if len(items) != h.length {
		return Value{}, 0, parseError(headerLine, "array declares %d items, found %d", h.length, len(items))
	}
	return NewArray(items...), next, nil
}

func (p *parser) parseTabularRows(h arrayHeader, headerIdx, bodyIndent, headerLine int) (Value, int, error) {
	for _, f := range h.fields {
		if !unquotedKeyPattern.MatchString(f) {
			return Value{}, 0, parseError(headerLine, "invalid column name %q", f)
		}
	}
	var rows []Value
	i := headerIdx + 1
	for i < len(p.lines) && p.lines[i].indent == bodyIndent {
		ln := p.lines[i]
		cells, err := p.parseInlineValues(ln.text, ctxTabularCell, ln.no)
		if err != nil {
			return Value{}, 0, err
		}
		if len(cells) != len(h.fields) {
			return Value{}, 0, parseError(ln.no, "row has %d values, expected %d columns", len(cells), len(h.fields))
		}
		members := make([]Member, len(cells))
		for j, c := range cells {
			members[j] = Member{Key: h.fields[j], Value: c}
		}
		rows = append(rows, NewObject(members...))
		i++
	}
	if i < len(p.lines) && p.lines[i].indent > bodyIndent {
		return Value{}, 0, parseError(p.lines[i].no, "indentation jumps more than one level")
	}
	if len(rows) != h.length {
		return Value{}, 0, parseError(headerLine, "array declares %d rows, found %d", h.length, len(rows))
	}
	return NewArray(rows...), i, nil
}

// parseListItems collects "- " items at exactly itemIndent. A line
// holding only "-" is an empty object item. The list ends at the
// first shallower line or at a sibling field.
func (p *parser) parseListItems(start, itemIndent int) ([]Value, int, error) {
	var items []Value
	i := start
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.indent < itemIndent {
			break
		}
		if ln.indent > itemIndent {
			return nil, 0, parseError(ln.no, "indentation jumps more than one level")
		}
		if ln.text == "-" {
			items = append(items, NewObject())
			i++
			continue
		}
		if !strings.HasPrefix(ln.text, "- ") {
			break
		}
		content := ln.text[2:]
		contentCol := ln.indent + 2
		switch {
		case strings.HasPrefix(content, "["):
			h, ok := parseArrayHeader(content)
			if !ok {
				return nil, 0, parseError(ln.no, "malformed array header %q", content)
			}
			v, next, err := p.parseArrayBody(h, i, contentCol, ln.no)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, v)
			i = next
		case lineHasKey(content):
			v, next, err := p.parseListItemObject(content, i, contentCol)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, v)
			i = next
		default:
			v, err := p.parseScalarToken(content, ctxDocument, ln.no)
			if err != nil {
				return nil, 0, err
			}
			items = append(items, v)
			i++
		}
	}
	return items, i, nil
}

// parseListItemObject parses an object whose first field sits on the
// "- " line at column contentCol; sibling fields follow at the same
// column on later lines.
func (p *parser) parseListItemObject(firstContent string, hyphenIdx, contentCol int) (Value, int, error) {
	var members []Member
	i, err := p.parseField(firstContent, hyphenIdx, contentCol, &members)
	if err != nil {
		return Value{}, 0, err
	}
	for i < len(p.lines) {
		ln := p.lines[i]
		if ln.indent != contentCol {
			break
		}
		if strings.HasPrefix(ln.text, "- ") || ln.text == "-" || !lineHasKey(ln.text) {
			break
		}
		i, err = p.parseField(ln.text, i, contentCol, &members)
		if err != nil {
			return Value{}, 0, err
		}
	}
	return NewObject(members...), i, nil
}

func parseKey(content string, no int) (string, string, error) {
	if strings.HasPrefix(content, `"`) {
		end, ok := findClosingQuote(content, 1)
		if !ok {
			return "", "", parseError(no, "unterminated quoted key")
		}
		return unescape(content[1:end]), content[end+1:], nil
	}
	end := earliest(strings.IndexByte(content, ':'), strings.IndexByte(content, '['))
	if end < 0 {
		return "", "", parseError(no, "expected ':' in %q", content)
	}
	key := content[:end]
	if !unquotedKeyPattern.MatchString(key) {
		return "", "", parseError(no, "invalid unquoted key %q", key)
	}
	return key, content[end:], nil
}

func (p *parser) parseInlineValues(s string, ctx quoteContext, no int) ([]Value, error) {
	var values []Value
	i := 0
	for i < len(s) {
		if s[i] == '"' {
			end, ok := findClosingQuote(s, i+1)
			if !ok {
				return nil, parseError(no, "unterminated quoted string")
			}
			values = append(values, NewString(unescape(s[i+1:end])))
			i = end + 1
			if i < len(s) {
				if s[i] != ',' {
					return nil, parseError(no, "unexpected character after closing quote")
				}
				i++
			}
			continue
		}
		end := strings.IndexByte(s[i:], ',')
		var tok string
		if end < 0 {
			tok = s[i:]
			i = len(s)
		} else {
			tok = s[i : i+end]
			i += end + 1
		}
		v, err := p.parseScalarToken(strings.TrimSpace(tok), ctx, no)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

var numberPattern = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?$`)

// parseScalarToken interprets one bare or quoted token. Bare tokens
// the encoder could only have produced quoted in this context are
// rejected.
func (p *parser) parseScalarToken(tok string, ctx quoteContext, no int) (Value, error) {
	if tok == "" {
		return Value{}, parseError(no, "missing value")
	}
	if tok[0] == '"' {
		end, ok := findClosingQuote(tok, 1)
		if !ok {
			return Value{}, parseError(no, "unterminated quoted string")
		}
		if end != len(tok)-1 {
			return Value{}, parseError(no, "unexpected content after closing quote")
		}
		return NewString(unescape(tok[1:end])), nil
	}
	switch tok {
	case "null":
		return NewNull(), nil
	case "true":
		return NewBool(true), nil
	case "false":
		return NewBool(false), nil
	}
	if numberPattern.MatchString(tok) {
		if !strings.ContainsRune(tok, '.') {
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				return NewInt(n), nil
			}
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, parseError(no, "invalid number %q", tok)
		}
		return NewFloat(f), nil
	}
	if needsQuoting(tok, ctx) {
		return Value{}, parseError(no, "token %q must be quoted in this context", tok)
	}
	return NewString(tok), nil
}

func lineHasKey(content string) bool {
	if strings.HasPrefix(content, `"`) {
		end, ok := findClosingQuote(content, 1)
		if !ok {
			return false
		}
		return end+1 < len(content) && (content[end+1] == ':' || content[end+1] == '[')
	}
	if strings.HasPrefix(content, "[") {
		return false
	}
	end := earliest(strings.IndexByte(content, ':'), strings.IndexByte(content, '['))
	if end < 0 {
		return false
	}
	before := content[:end]
	return before != "" && !strings.Contains(before, " ")
}

func earliest(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func findClosingQuote(s string, start int) (int, bool) {
	i := start
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case '"':
			return i, true
		default:
			i++
		}
	}
	return 0, false
}

func unescape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			sb.WriteByte('\\')
			break
		}
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			sb.WriteString(`\u`)
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
