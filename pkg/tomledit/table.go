package tomledit

import (
	"slices"
	"strings"
)

// Kind classifies the shape of a table entry's value.
type Kind int

const (
	// KindString is a plain string value.
	KindString Kind = iota
	// KindInlineTable is a single-line { key = value, ... } table.
	KindInlineTable
	// KindTable is a [section] subtable or a dotted-key group.
	KindTable
	// KindTableArray is an [[array-of-tables]] entry.
	KindTableArray
	// KindOther is any other value shape (number, boolean, array, ...).
	KindOther
)

// Table is a handle onto one table of a Document, regardless of how the
// document spells it: an explicit [section], an inline { ... } value, or a
// group of dotted keys. Mutations through the handle edit the underlying
// document in place.
type Table struct {
	doc  *Document
	path []string

	sec *section // explicit section; nil for implicit or non-section backings

	inline *inlineTable // inline-table value backing

	dottedIn *section // section holding prefix.* dotted keys
	prefix   []string
}

// Entry returns the entry for name in this table, or nil if absent.
func (t *Table) Entry(name string) *Entry {
	switch {
	case t.inline != nil:
		for _, it := range t.inline.items {
			if len(it.key) == 1 && it.key[0] == name {
				return &Entry{doc: t.doc, name: name, item: it, in: t.inline}
			}
		}
		return nil

	case t.prefix != nil:
		var exact *docLine
		deeper := false
		for _, l := range t.dottedIn.lines {
			if !l.isKV || len(l.key) <= len(t.prefix) || !pathsEqual(l.key[:len(t.prefix)], t.prefix) {
				continue
			}
			if l.key[len(t.prefix)] != name {
				continue
			}
			if len(l.key) == len(t.prefix)+1 {
				exact = l
				break
			}
			deeper = true
		}
		if exact != nil {
			return &Entry{doc: t.doc, name: name, line: exact, ownerSec: t.dottedIn}
		}
		if deeper {
			return &Entry{doc: t.doc, name: name, dottedIn: t.dottedIn, dottedPrefix: cloneAppend(t.prefix, name)}
		}
		return nil

	default:
		if t.sec != nil {
			for _, l := range t.sec.lines {
				if l.isKV && len(l.key) == 1 && l.key[0] == name {
					return &Entry{doc: t.doc, name: name, line: l, ownerSec: t.sec}
				}
			}
			for _, l := range t.sec.lines {
				if l.isKV && len(l.key) > 1 && l.key[0] == name {
					return &Entry{doc: t.doc, name: name, dottedIn: t.sec, dottedPrefix: []string{name}}
				}
			}
		}
		sub := cloneAppend(t.path, name)
		plain, arrays := t.doc.findSections(sub)
		if len(arrays) > 0 {
			return &Entry{doc: t.doc, name: name, arr: arrays}
		}
		if plain != nil {
			return &Entry{doc: t.doc, name: name, sec: plain}
		}
		return nil
	}
}

// Has reports whether the table contains an entry for name.
func (t *Table) Has(name string) bool { return t.Entry(name) != nil }

// Bool returns the boolean value of name. ok is false when the entry is
// absent or not a boolean.
func (t *Table) Bool(name string) (value, ok bool) {
	e := t.Entry(name)
	if e == nil {
		return false, false
	}
	var raw string
	switch {
	case e.line != nil:
		raw = e.line.value()
	case e.item != nil:
		raw = e.item.value()
	default:
		return false, false
	}
	switch strings.TrimSpace(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// SetBool sets name to a boolean, inserting the key if absent.
func (t *Table) SetBool(name string, v bool) {
	raw := "false"
	if v {
		raw = "true"
	}
	t.setScalar(name, raw)
}

// SetString sets name to a string value, inserting the key if absent.
func (t *Table) SetString(name, value string) {
	t.setScalar(name, renderString(value))
}

func (t *Table) setScalar(name, rawValue string) {
	if e := t.Entry(name); e != nil && (e.line != nil || e.item != nil) {
		e.SetValue(rawValue)
		return
	}
	switch {
	case t.inline != nil:
		t.inline.appendItem(name, rawValue)
	case t.prefix != nil:
		t.insertDotted(cloneAppend(t.prefix, name), rawValue)
	case t.sec != nil:
		t.sec.insertLine(newKVLine(name, rawValue))
	}
}

// insertDotted places a new prefix.name line directly after the last line
// of the dotted group, keeping the group contiguous.
func (t *Table) insertDotted(key []string, rawValue string) {
	idx := 0
	for i, l := range t.dottedIn.lines {
		if l.isKV && len(l.key) > len(t.prefix) && pathsEqual(l.key[:len(t.prefix)], t.prefix) {
			idx = i + 1
		}
	}
	line := newDottedKVLine(key, rawValue)
	if idx == 0 {
		t.dottedIn.insertLine(line)
		return
	}
	if prev := t.dottedIn.lines[idx-1]; !strings.HasSuffix(prev.raw, "\n") {
		prev.raw += "\n"
	}
	t.dottedIn.lines = slices.Insert(t.dottedIn.lines, idx, line)
}

// Delete removes the key-value entry for name and reports whether anything
// was removed. Subtables and array-of-tables entries are not deleted.
func (t *Table) Delete(name string) bool {
	switch {
	case t.inline != nil:
		return t.inline.removeItem(name)
	case t.prefix != nil:
		target := cloneAppend(t.prefix, name)
		for _, l := range t.dottedIn.lines {
			if l.isKV && pathsEqual(l.key, target) {
				return t.dottedIn.removeLine(l)
			}
		}
		return false
	case t.sec != nil:
		for _, l := range t.sec.lines {
			if l.isKV && len(l.key) == 1 && l.key[0] == name {
				return t.sec.removeLine(l)
			}
		}
		return false
	}
	return false
}

func (t *Table) subtable(name string, absPath []string, ensure bool) (*Table, error) {
	if e := t.Entry(name); e != nil {
		switch e.Kind() {
		case KindInlineTable:
			it, err := e.inlineView()
			if err != nil {
				return nil, &SchemaError{Key: joinPath(absPath)}
			}
			return &Table{doc: t.doc, path: absPath, inline: it}, nil
		case KindTable:
			if e.sec != nil {
				return &Table{doc: t.doc, path: absPath, sec: e.sec}, nil
			}
			return &Table{doc: t.doc, path: absPath, dottedIn: e.dottedIn, prefix: e.dottedPrefix}, nil
		default:
			return nil, &SchemaError{Key: joinPath(absPath)}
		}
	}
	if t.sec != nil || (t.inline == nil && t.prefix == nil) {
		if t.doc.hasSectionUnder(absPath) {
			return &Table{doc: t.doc, path: absPath}, nil
		}
	}
	if !ensure {
		return nil, nil
	}
	switch {
	case t.inline != nil:
		t.inline.appendItem(name, "{}")
		e := t.Entry(name)
		it, err := e.inlineView()
		if err != nil {
			return nil, &SchemaError{Key: joinPath(absPath)}
		}
		return &Table{doc: t.doc, path: absPath, inline: it}, nil
	case t.prefix != nil:
		return &Table{doc: t.doc, path: absPath, dottedIn: t.dottedIn, prefix: cloneAppend(t.prefix, name)}, nil
	default:
		return &Table{doc: t.doc, path: absPath, sec: t.doc.appendSection(absPath)}, nil
	}
}

// Entry is one named entry of a Table. Exactly one backing is set: a
// key-value line, an inline-table item, a subsection, an array of
// subsections, or a dotted-key group.
type Entry struct {
	doc  *Document
	name string

	line     *docLine // key = value in a section
	ownerSec *section

	item *inlineItem // key = value inside an inline table
	in   *inlineTable

	sec *section   // [table.name] subsection
	arr []*section // [[table.name]] elements

	dottedIn     *section // name.* dotted group
	dottedPrefix []string
}

// Name returns the entry's key.
func (e *Entry) Name() string { return e.name }

// Kind classifies the entry's value shape.
func (e *Entry) Kind() Kind {
	switch {
	case e.sec != nil, e.dottedIn != nil:
		return KindTable
	case e.arr != nil:
		return KindTableArray
	case e.line != nil:
		return kindOfValue(e.line.value())
	case e.item != nil:
		return kindOfValue(e.item.value())
	}
	return KindOther
}

func kindOfValue(v string) Kind {
	if v == "" {
		return KindOther
	}
	switch v[0] {
	case '"', '\'':
		return KindString
	case '{':
		return KindInlineTable
	}
	return KindOther
}

// StringValue returns the decoded string value of a KindString entry.
func (e *Entry) StringValue() (string, bool) {
	var raw string
	switch {
	case e.line != nil:
		raw = e.line.value()
	case e.item != nil:
		raw = e.item.value()
	default:
		return "", false
	}
	if kindOfValue(raw) != KindString {
		return "", false
	}
	decoded, err := decodeStringToken(raw)
	if err != nil {
		return "", false
	}
	return decoded, true
}

// AsTable returns a Table view of a KindInlineTable or KindTable entry.
func (e *Entry) AsTable() (*Table, bool) {
	switch {
	case e.sec != nil:
		return &Table{doc: e.doc, path: slices.Clone(e.sec.path), sec: e.sec}, true
	case e.dottedIn != nil:
		return &Table{doc: e.doc, dottedIn: e.dottedIn, prefix: e.dottedPrefix}, true
	}
	if e.Kind() != KindInlineTable {
		return nil, false
	}
	it, err := e.inlineView()
	if err != nil {
		return nil, false
	}
	return &Table{doc: e.doc, inline: it}, true
}

// TableArray returns the element tables of a KindTableArray entry, in
// document order.
func (e *Entry) TableArray() []*Table {
	tables := make([]*Table, 0, len(e.arr))
	for _, s := range e.arr {
		tables = append(tables, &Table{doc: e.doc, path: slices.Clone(s.path), sec: s})
	}
	return tables
}

// SetValue replaces the entry's value with raw TOML text. Only key-value
// backed entries (lines and inline items) carry a replaceable value.
func (e *Entry) SetValue(raw string) {
	switch {
	case e.line != nil:
		e.line.setValue(raw)
	case e.item != nil:
		e.item.setValue(raw)
		e.in.render()
	}
}

func (e *Entry) inlineView() (*inlineTable, error) {
	if e.line != nil {
		if e.line.inline == nil {
			items, err := parseInlineItems(e.line.value())
			if err != nil {
				return nil, err
			}
			e.line.inline = &inlineTable{owner: e.line, items: items}
		}
		return e.line.inline, nil
	}
	if e.item != nil {
		if e.item.inline == nil {
			items, err := parseInlineItems(e.item.value())
			if err != nil {
				return nil, err
			}
			e.item.inline = &inlineTable{parent: e.in, parentItem: e.item, items: items}
		}
		return e.item.inline, nil
	}
	return nil, &SchemaError{Key: e.name}
}

func cloneAppend(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}
