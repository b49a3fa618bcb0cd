package tomledit

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a TOML document into an editable form. The raw text of every
// line is retained, so Bytes reproduces the input exactly until an edit is
// made. Syntactically invalid input yields a *ParseError.
func Parse(data []byte) (*Document, error) {
	p := &parser{data: data, line: 1}
	doc := &Document{}
	cur := &section{}
	doc.sections = append(doc.sections, cur)

	for !p.eof() {
		start := p.pos
		p.skipInline()
		switch {
		case p.eof():
			// trailing whitespace with no final newline
			cur.lines = append(cur.lines, &docLine{raw: string(p.data[start:])})
		case p.peek() == '\n' || p.peek() == '\r' || p.peek() == '#':
			p.skipToEOL()
			cur.lines = append(cur.lines, &docLine{raw: string(p.data[start:p.pos])})
		case p.peek() == '[':
			sec, err := p.parseHeader(start)
			if err != nil {
				return nil, err
			}
			doc.sections = append(doc.sections, sec)
			cur = sec
		default:
			kv, err := p.parseKeyValue(start)
			if err != nil {
				return nil, err
			}
			cur.lines = append(cur.lines, kv)
		}
	}
	return doc, nil
}

type parser struct {
	data      []byte
	pos       int
	line      int
	lineStart int
}

func (p *parser) eof() bool      { return p.pos >= len(p.data) }
func (p *parser) peek() byte     { return p.data[p.pos] }
func (p *parser) remaining() int { return len(p.data) - p.pos }

func (p *parser) advance() byte {
	c := p.data[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.lineStart = p.pos
	}
	return c
}

func (p *parser) errf(format string, args ...any) *ParseError {
	return &ParseError{Line: p.line, Col: p.pos - p.lineStart + 1, Msg: fmt.Sprintf(format, args...)}
}

// skipInline consumes spaces and tabs.
func (p *parser) skipInline() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance()
	}
}

// skipToEOL consumes everything up to and including the next newline.
func (p *parser) skipToEOL() {
	for !p.eof() {
		if p.advance() == '\n' {
			return
		}
	}
}

// parseHeader parses a [table] or [[array-of-tables]] header line.
// start is the offset where the line's leading whitespace began.
func (p *parser) parseHeader(start int) (*section, error) {
	array := false
	p.advance() // consume '['
	if !p.eof() && p.peek() == '[' {
		array = true
		p.advance()
	}
	p.skipInline()
	path, err := p.parseKeyPath()
	if err != nil {
		return nil, err
	}
	p.skipInline()
	if p.eof() || p.peek() != ']' {
		return nil, p.errf("expected ']' to close table header")
	}
	p.advance()
	if array {
		if p.eof() || p.peek() != ']' {
			return nil, p.errf("expected ']]' to close array table header")
		}
		p.advance()
	}
	p.skipInline()
	if !p.eof() && p.peek() != '\n' && p.peek() != '\r' && p.peek() != '#' {
		return nil, p.errf("unexpected character %q after table header", string(p.peek()))
	}
	p.skipToEOL()
	return &section{headerRaw: string(p.data[start:p.pos]), path: path, array: array}, nil
}

// parseKeyValue parses a key = value line, including any trailing comment.
func (p *parser) parseKeyValue(start int) (*docLine, error) {
	key, err := p.parseKeyPath()
	if err != nil {
		return nil, err
	}
	p.skipInline()
	if p.eof() || p.peek() != '=' {
		return nil, p.errf("expected '=' after key")
	}
	p.advance()
	p.skipInline()
	valStart := p.pos
	if err := p.scanValue(); err != nil {
		return nil, err
	}
	valEnd := p.pos
	p.skipInline()
	if !p.eof() && p.peek() != '\n' && p.peek() != '\r' && p.peek() != '#' {
		return nil, p.errf("unexpected character %q after value", string(p.peek()))
	}
	p.skipToEOL()
	return &docLine{
		raw:    string(p.data[start:p.pos]),
		isKV:   true,
		key:    key,
		valOff: valStart - start,
		valEnd: valEnd - start,
	}, nil
}

// parseKeyPath parses a possibly dotted key such as target."cfg(unix)".deps.
func (p *parser) parseKeyPath() ([]string, error) {
	var parts []string
	for {
		part, err := p.parseKeyPart()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
		p.skipInline()
		if p.eof() || p.peek() != '.' {
			return parts, nil
		}
		p.advance()
		p.skipInline()
	}
}

func (p *parser) parseKeyPart() (string, error) {
	if p.eof() {
		return "", p.errf("unexpected end of input in key")
	}
	if c := p.peek(); c == '"' || c == '\'' {
		start := p.pos
		if err := p.scanString(); err != nil {
			return "", err
		}
		decoded, err := decodeStringToken(string(p.data[start:p.pos]))
		if err != nil {
			return "", p.errf("invalid quoted key: %v", err)
		}
		return decoded, nil
	}
	start := p.pos
	for !p.eof() && isBareKeyChar(p.peek()) {
		p.advance()
	}
	if p.pos == start {
		return "", p.errf("invalid character %q in key", string(p.peek()))
	}
	return string(p.data[start:p.pos]), nil
}

// scanValue consumes a single TOML value without interpreting it.
func (p *parser) scanValue() error {
	if p.eof() {
		return p.errf("expected a value")
	}
	switch p.peek() {
	case '"', '\'':
		return p.scanString()
	case '[':
		return p.scanDelimited('[', ']', true)
	case '{':
		return p.scanDelimited('{', '}', false)
	default:
		return p.scanBareValue()
	}
}

// scanString consumes a basic, literal, or multi-line string.
func (p *parser) scanString() error {
	q := p.peek()
	if p.remaining() >= 3 && p.data[p.pos+1] == q && p.data[p.pos+2] == q {
		return p.scanMultilineString(q)
	}
	p.advance()
	for {
		if p.eof() {
			return p.errf("unterminated string")
		}
		c := p.peek()
		if c == '\n' {
			return p.errf("unterminated string")
		}
		p.advance()
		if c == q {
			return nil
		}
		if c == '\\' && q == '"' {
			if p.eof() {
				return p.errf("unterminated escape sequence")
			}
			p.advance()
		}
	}
}

func (p *parser) scanMultilineString(q byte) error {
	p.advance()
	p.advance()
	p.advance()
	run := 0
	for {
		if p.eof() {
			return p.errf("unterminated multi-line string")
		}
		c := p.peek()
		if c == q {
			p.advance()
			run++
			if run == 3 {
				// a multi-line string may end with one or two extra quotes
				for extra := 0; extra < 2 && !p.eof() && p.peek() == q; extra++ {
					p.advance()
				}
				return nil
			}
			continue
		}
		run = 0
		p.advance()
		if c == '\\' && q == '"' && !p.eof() {
			p.advance()
		}
	}
}

// scanDelimited consumes a bracketed value, tracking nesting depth and
// skipping over strings. Arrays may span lines and contain comments;
// inline tables may not.
func (p *parser) scanDelimited(open, close byte, multiline bool) error {
	depth := 0
	for !p.eof() {
		switch c := p.peek(); c {
		case open:
			depth++
			p.advance()
		case close:
			depth--
			p.advance()
			if depth == 0 {
				return nil
			}
		case '"', '\'':
			if err := p.scanString(); err != nil {
				return err
			}
		case '#':
			if !multiline {
				return p.errf("comment inside inline table")
			}
			p.skipToEOL()
		case '\n', '\r':
			if !multiline {
				return p.errf("newline inside inline table")
			}
			p.advance()
		default:
			p.advance()
		}
	}
	return p.errf("unterminated %q value", string(open))
}

// scanBareValue consumes an unquoted scalar (number, boolean, datetime).
func (p *parser) scanBareValue() error {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '\n' || c == '\r' || c == '#' || c == ',' || c == ']' || c == '}' {
			break
		}
		p.advance()
	}
	// back trailing whitespace out of the value span
	for p.pos > start && (p.data[p.pos-1] == ' ' || p.data[p.pos-1] == '\t') {
		p.pos--
	}
	if p.pos == start {
		return p.errf("expected a value")
	}
	return nil
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// decodeStringToken decodes a quoted string token (any of the four TOML
// string forms, quotes included) into its value. Bare tokens pass through.
func decodeStringToken(tok string) (string, error) {
	switch {
	case strings.HasPrefix(tok, `"""`):
		return decodeBasic(trimFirstNewline(tok[3:len(tok)-3]), true)
	case strings.HasPrefix(tok, `"`):
		return decodeBasic(tok[1:len(tok)-1], false)
	case strings.HasPrefix(tok, "'''"):
		return trimFirstNewline(tok[3 : len(tok)-3]), nil
	case strings.HasPrefix(tok, "'"):
		return tok[1 : len(tok)-1], nil
	default:
		return tok, nil
	}
}

// trimFirstNewline drops the newline immediately following the opening
// delimiter of a multi-line string, per the TOML spec.
func trimFirstNewline(s string) string {
	s = strings.TrimPrefix(s, "\r\n")
	return strings.TrimPrefix(s, "\n")
}

func decodeBasic(s string, multiline bool) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+width >= len(s) {
				return "", fmt.Errorf("truncated unicode escape")
			}
			n, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape: %v", err)
			}
			b.WriteRune(rune(n))
			i += width
		case ' ', '\t', '\r', '\n':
			if !multiline {
				return "", fmt.Errorf("invalid escape %q", string(s[i]))
			}
			// line-ending backslash: skip whitespace through the next lines
			for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
				i++
			}
			i--
		default:
			return "", fmt.Errorf("invalid escape %q", string(s[i]))
		}
	}
	return b.String(), nil
}

// renderKey renders a key part, quoting it when it is not a bare key.
func renderKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		if !isBareKeyChar(k[i]) {
			return renderString(k)
		}
	}
	return k
}

// renderKeyPath renders a dotted key path for a table header.
func renderKeyPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = renderKey(p)
	}
	return strings.Join(parts, ".")
}

// renderString renders a value as a TOML basic string.
func renderString(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
