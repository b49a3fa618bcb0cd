// Package tomledit provides a format-preserving editor for TOML documents.
//
// Unlike a decode/encode cycle, which reorders keys and discards comments,
// tomledit keeps the raw text of every construct it parses and only
// re-renders the entries an edit actually touches. Serializing an
// unmodified document reproduces the input byte for byte; serializing a
// modified document changes only the mutated entries.
//
// The editing surface is deliberately small: table lookup and creation,
// entry classification, and scalar-level mutation of table entries. It
// covers what a manifest rewriter needs, not general TOML manipulation.
//
// # Example
//
//	doc, err := tomledit.Parse(data)
//	if err != nil {
//	    return err
//	}
//	deps, err := doc.EnsureTable("workspace", "dependencies")
//	if err != nil {
//	    return err
//	}
//	if !deps.Has("serde") {
//	    deps.SetString("serde", "1.0")
//	}
//	os.WriteFile(path, doc.Bytes(), 0o644)
package tomledit
