package tomledit

import (
	"strings"
)

// inlineTable is the parsed form of a { key = value, ... } value. Each item
// keeps the raw text of its segment so untouched items re-render exactly.
// Nested inline tables re-render through their parent chain up to the
// owning document line.
type inlineTable struct {
	owner *docLine // set when this is a top-level inline value

	parent     *inlineTable // set when nested inside another inline table
	parentItem *inlineItem

	items []*inlineItem
}

// inlineItem is one comma-separated segment of an inline table, whitespace
// included.
type inlineItem struct {
	raw    string
	key    []string
	valOff int
	valEnd int
	inline *inlineTable // parsed cache for nested inline-table values
}

func (it *inlineItem) value() string { return it.raw[it.valOff:it.valEnd] }

func (it *inlineItem) setValue(v string) {
	it.raw = it.raw[:it.valOff] + v + it.raw[it.valEnd:]
	it.valEnd = it.valOff + len(v)
	it.inline = nil
}

// parseInlineItems splits the interior of an inline-table value into items.
// The text must start with '{' and end with '}' (guaranteed by the scanner).
func parseInlineItems(text string) ([]*inlineItem, error) {
	interior := text[1 : len(text)-1]
	if strings.TrimSpace(interior) == "" {
		return nil, nil
	}
	var items []*inlineItem
	for _, seg := range splitTopLevel(interior, ',') {
		p := &parser{data: []byte(seg), line: 1}
		p.skipInline()
		key, err := p.parseKeyPath()
		if err != nil {
			return nil, err
		}
		p.skipInline()
		if p.eof() || p.peek() != '=' {
			return nil, p.errf("expected '=' in inline table")
		}
		p.advance()
		p.skipInline()
		valStart := p.pos
		if err := p.scanValue(); err != nil {
			return nil, err
		}
		items = append(items, &inlineItem{
			raw:    seg,
			key:    key,
			valOff: valStart,
			valEnd: p.pos,
		})
	}
	return items, nil
}

// splitTopLevel splits s on sep occurrences that sit outside strings and
// outside any bracket or brace nesting.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	p := &parser{data: []byte(s), line: 1}
	for !p.eof() {
		switch c := p.peek(); c {
		case '"', '\'':
			// scan errors cannot occur here: the segment was validated
			// when the document was parsed
			_ = p.scanString()
		case '[', '{':
			depth++
			p.advance()
		case ']', '}':
			depth--
			p.advance()
		default:
			if c == sep && depth == 0 {
				parts = append(parts, s[start:p.pos])
				p.advance()
				start = p.pos
			} else {
				p.advance()
			}
		}
	}
	return append(parts, s[start:])
}

// render rebuilds the inline table's text and writes it back into the
// owning value, preserving each untouched item's raw segment.
func (t *inlineTable) render() {
	var b strings.Builder
	b.WriteByte('{')
	for i, it := range t.items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(it.raw)
	}
	b.WriteByte('}')
	text := b.String()
	if t.parent != nil {
		t.parentItem.setValue(text)
		t.parentItem.inline = t
		t.parent.render()
		return
	}
	t.owner.setValue(text)
	t.owner.inline = t
}

// appendItem adds name = rawValue as the last item, normalizing the spacing
// around the closing brace.
func (t *inlineTable) appendItem(name, rawValue string) {
	if n := len(t.items); n > 0 {
		last := t.items[n-1]
		last.raw = strings.TrimRight(last.raw, " \t")
	}
	prefix := " " + renderKey(name) + " = "
	t.items = append(t.items, &inlineItem{
		raw:    prefix + rawValue + " ",
		key:    []string{name},
		valOff: len(prefix),
		valEnd: len(prefix) + len(rawValue),
	})
	t.render()
}

// removeItem deletes the item for name and reports whether it was present.
func (t *inlineTable) removeItem(name string) bool {
	for i, it := range t.items {
		if len(it.key) == 1 && it.key[0] == name {
			t.items = append(t.items[:i], t.items[i+1:]...)
			t.render()
			return true
		}
	}
	return false
}
