package manifest

import (
	"github.com/easydep/easydep/pkg/tomledit"
)

// dependencyTables are the member tables that can declare dependencies,
// directly or under a [target.<cfg>] prefix.
var dependencyTables = []string{"dependencies", "dev-dependencies", "build-dependencies"}

// RewriteMember normalizes every qualifying dependency declared in the
// member document into delegating form, across the regular, dev, build,
// and per-target dependency tables. Attributes unrelated to the version
// (features, optional, package renames) stay untouched, as does all
// formatting. The returned flag reports whether a delegation marker was
// inserted or flipped; applying the rewrite twice yields no change on the
// second pass.
func RewriteMember(doc *tomledit.Document, path string, common map[string]string) (bool, error) {
	modified := false
	for _, tablePath := range dependencyTablePaths(doc) {
		tbl, err := doc.Table(tablePath...)
		if err != nil {
			return modified, wrapSchema(err, path)
		}
		if tbl == nil {
			continue
		}
		changed, err := rewriteTable(tbl, path, common)
		modified = modified || changed
		if err != nil {
			return modified, err
		}
	}
	return modified, nil
}

// dependencyTablePaths lists the table paths to rewrite: the three
// top-level tables plus every target-scoped variant present in the
// document. Paths that turn out not to exist resolve to nil and are
// skipped by the caller.
func dependencyTablePaths(doc *tomledit.Document) [][]string {
	paths := make([][]string, 0, len(dependencyTables))
	seen := make(map[string]bool)
	add := func(p []string) {
		key := p[0]
		for _, part := range p[1:] {
			key += "\x00" + part
		}
		if !seen[key] {
			seen[key] = true
			paths = append(paths, p)
		}
	}
	for _, name := range dependencyTables {
		add([]string{name})
	}
	for _, p := range doc.TablePaths() {
		if len(p) < 2 || p[0] != "target" {
			continue
		}
		if len(p) >= 3 && isDependencyTable(p[2]) {
			add([]string{p[0], p[1], p[2]})
		}
		if len(p) == 2 {
			for _, name := range dependencyTables {
				add([]string{p[0], p[1], name})
			}
		}
	}
	return paths
}

func isDependencyTable(name string) bool {
	for _, t := range dependencyTables {
		if name == t {
			return true
		}
	}
	return false
}

func rewriteTable(tbl *tomledit.Table, path string, common map[string]string) (bool, error) {
	modified := false
	for _, name := range sortedKeys(common) {
		e := tbl.Entry(name)
		if e == nil {
			continue
		}
		decl, err := Classify(e)
		if err != nil {
			return modified, &MalformedDeclarationError{Path: path, Dependency: name}
		}
		if rewriteDeclaration(decl) {
			modified = true
		}
	}
	return modified, nil
}

// rewriteDeclaration turns one declaration into delegating form. Modified
// tracks marker changes only: an entry already carrying workspace = true
// reports no change, which is what makes the rewrite idempotent.
// Declarations with a local path or git source are left untouched.
func rewriteDeclaration(d *Declaration) bool {
	if !d.Delegatable() {
		return false
	}
	switch d.Kind {
	case VersionString:
		d.ReplaceWithMarker()
		return true
	case InlineAttributes, Block:
		d.RemoveVersion()
		if v, present := d.Marker(); !present || !v {
			d.SetMarker(true)
			return true
		}
		return false
	case TargetList:
		modified := false
		for _, elem := range d.Elements() {
			if rewriteDeclaration(elem) {
				modified = true
			}
		}
		return modified
	}
	return false
}
