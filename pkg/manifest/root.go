package manifest

import (
	"errors"

	"github.com/easydep/easydep/pkg/tomledit"
)

// RewriteRoot ensures the root document carries a [workspace.dependencies]
// table and inserts every common dependency missing from it as a plain
// version-string entry. An existing entry is never overwritten: a
// maintainer's explicit root pin always wins over the inferred
// representative. The returned flag reports whether anything was inserted.
func RewriteRoot(doc *tomledit.Document, path string, common map[string]string) (bool, error) {
	if _, err := doc.EnsureTable("workspace"); err != nil {
		return false, wrapSchema(err, path)
	}
	deps, err := doc.EnsureTable("workspace", "dependencies")
	if err != nil {
		return false, wrapSchema(err, path)
	}

	modified := false
	for _, name := range sortedKeys(common) {
		if deps.Has(name) {
			continue
		}
		deps.SetString(name, common[name])
		modified = true
	}
	return modified, nil
}

func wrapSchema(err error, path string) error {
	var se *tomledit.SchemaError
	if errors.As(err, &se) {
		return &SchemaError{Path: path, Key: se.Key, Err: err}
	}
	return err
}
