package tomledit

import (
	"bytes"
	"slices"
	"strings"
)

// Document is an editable TOML document. It is created by Parse, mutated
// through Table handles, and serialized with Bytes. A Document is not safe
// for concurrent use.
type Document struct {
	sections []*section
}

// section is a run of lines introduced by a [header] (or the implicit root
// region before the first header, whose headerRaw is empty).
type section struct {
	headerRaw string
	path      []string
	array     bool
	lines     []*docLine
}

// docLine is one logical line: a key-value entry, or trivia (comment or
// blank line). A key-value entry's raw text may span several physical lines
// when its value is a multi-line string or array.
type docLine struct {
	raw    string
	isKV   bool
	key    []string
	valOff int // value offsets within raw
	valEnd int
	inline *inlineTable // parsed cache for inline-table values
}

func (l *docLine) value() string { return l.raw[l.valOff:l.valEnd] }

func (l *docLine) setValue(v string) {
	l.raw = l.raw[:l.valOff] + v + l.raw[l.valEnd:]
	l.valEnd = l.valOff + len(v)
	l.inline = nil
}

// Bytes serializes the document. Regions not touched by an edit are
// reproduced byte-identically.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	for _, s := range d.sections {
		b.WriteString(s.headerRaw)
		for _, l := range s.lines {
			b.WriteString(l.raw)
		}
	}
	return b.Bytes()
}

// Table returns a handle for the table at the given key path, or nil if no
// such table exists. A path component that exists with a non-table shape
// yields a *SchemaError.
func (d *Document) Table(path ...string) (*Table, error) {
	return d.resolve(path, false)
}

// EnsureTable returns the table at the given key path, creating missing
// tables as explicit [header] sections appended at the end of the document.
func (d *Document) EnsureTable(path ...string) (*Table, error) {
	return d.resolve(path, true)
}

func (d *Document) resolve(path []string, ensure bool) (*Table, error) {
	t := &Table{doc: d, sec: d.sections[0]}
	for i := range path {
		next, err := t.subtable(path[i], slices.Clone(path[:i+1]), ensure)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil
		}
		t = next
	}
	return t, nil
}

// TablePaths returns the key paths of every explicitly declared table and
// array-of-tables header, in document order.
func (d *Document) TablePaths() [][]string {
	var paths [][]string
	for _, s := range d.sections[1:] {
		paths = append(paths, slices.Clone(s.path))
	}
	return paths
}

// hasSectionUnder reports whether any explicit section extends path, which
// makes path an implicit table.
func (d *Document) hasSectionUnder(path []string) bool {
	for _, s := range d.sections[1:] {
		if len(s.path) > len(path) && pathsEqual(s.path[:len(path)], path) {
			return true
		}
	}
	return false
}

func (d *Document) findSections(path []string) (plain *section, arrays []*section) {
	for _, s := range d.sections[1:] {
		if !pathsEqual(s.path, path) {
			continue
		}
		if s.array {
			arrays = append(arrays, s)
		} else if plain == nil {
			plain = s
		}
	}
	return plain, arrays
}

// appendSection adds a new explicit table section at the end of the
// document and returns it.
func (d *Document) appendSection(path []string) *section {
	d.ensureTrailingNewline()
	sec := &section{headerRaw: "[" + renderKeyPath(path) + "]\n", path: slices.Clone(path)}
	d.sections = append(d.sections, sec)
	return sec
}

// ensureTrailingNewline terminates the final line of the document so a new
// section header starts on its own line. Called only on the mutation path;
// an untouched document keeps its original final bytes.
func (d *Document) ensureTrailingNewline() {
	for i := len(d.sections) - 1; i >= 0; i-- {
		s := d.sections[i]
		if n := len(s.lines); n > 0 {
			if !strings.HasSuffix(s.lines[n-1].raw, "\n") {
				s.lines[n-1].raw += "\n"
			}
			return
		}
		if s.headerRaw != "" {
			if !strings.HasSuffix(s.headerRaw, "\n") {
				s.headerRaw += "\n"
			}
			return
		}
	}
}

// insertLine places l after the last key-value entry of the section, before
// any trailing comments or blank lines.
func (s *section) insertLine(l *docLine) {
	idx := 0
	for i, x := range s.lines {
		if x.isKV {
			idx = i + 1
		}
	}
	if idx > 0 {
		if prev := s.lines[idx-1]; !strings.HasSuffix(prev.raw, "\n") {
			prev.raw += "\n"
		}
	} else if s.headerRaw != "" && !strings.HasSuffix(s.headerRaw, "\n") {
		s.headerRaw += "\n"
	}
	s.lines = slices.Insert(s.lines, idx, l)
}

func (s *section) removeLine(l *docLine) bool {
	for i, x := range s.lines {
		if x == l {
			s.lines = slices.Delete(s.lines, i, i+1)
			return true
		}
	}
	return false
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

func newKVLine(name, rawValue string) *docLine {
	prefix := renderKey(name) + " = "
	return &docLine{
		raw:    prefix + rawValue + "\n",
		isKV:   true,
		key:    []string{name},
		valOff: len(prefix),
		valEnd: len(prefix) + len(rawValue),
	}
}

func newDottedKVLine(key []string, rawValue string) *docLine {
	prefix := renderKeyPath(key) + " = "
	return &docLine{
		raw:    prefix + rawValue + "\n",
		isKV:   true,
		key:    slices.Clone(key),
		valOff: len(prefix),
		valEnd: len(prefix) + len(rawValue),
	}
}
