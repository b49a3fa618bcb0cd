package manifest

import (
	"errors"

	"github.com/easydep/easydep/pkg/tomledit"
)

// markerKey is the delegation marker: a member entry carrying
// workspace = true takes its requirement from [workspace.dependencies]
// in the root manifest.
const markerKey = "workspace"

// versionKey is the local version requirement attribute removed when a
// declaration starts delegating.
const versionKey = "version"

// pathKey and gitKey identify declarations with a non-registry source.
// Such declarations never delegate, even when the name qualifies through
// other modules.
const (
	pathKey = "path"
	gitKey  = "git"
)

// DeclarationKind enumerates the shapes a dependency declaration can take
// in a manifest.
type DeclarationKind int

const (
	// VersionString is a bare requirement: serde = "1.0".
	VersionString DeclarationKind = iota
	// InlineAttributes is a single-line attribute set:
	// serde = { version = "1.0", features = ["derive"] }.
	InlineAttributes
	// Block is a full attribute table: [dependencies.serde].
	Block
	// TargetList is a list of per-target attribute blocks:
	// [[dependencies.serde]].
	TargetList
)

// errUnrecognizedShape marks entry shapes outside the four declaration
// variants; callers wrap it with the file path and dependency name.
var errUnrecognizedShape = errors.New("unrecognized declaration shape")

// Declaration is one dependency entry classified into exactly one of the
// four variants. Mutations edit the underlying document in place and touch
// nothing beyond the entry itself.
type Declaration struct {
	Kind DeclarationKind

	entry   *tomledit.Entry   // VersionString
	attrs   *tomledit.Table   // InlineAttributes, Block
	targets []*tomledit.Table // TargetList
}

// Classify wraps a table entry as a Declaration. Entries that fit none of
// the variants return errUnrecognizedShape.
func Classify(e *tomledit.Entry) (*Declaration, error) {
	switch e.Kind() {
	case tomledit.KindString:
		return &Declaration{Kind: VersionString, entry: e}, nil
	case tomledit.KindInlineTable:
		attrs, ok := e.AsTable()
		if !ok {
			return nil, errUnrecognizedShape
		}
		return &Declaration{Kind: InlineAttributes, attrs: attrs}, nil
	case tomledit.KindTable:
		attrs, ok := e.AsTable()
		if !ok {
			return nil, errUnrecognizedShape
		}
		return &Declaration{Kind: Block, attrs: attrs}, nil
	case tomledit.KindTableArray:
		return &Declaration{Kind: TargetList, targets: e.TableArray()}, nil
	default:
		return nil, errUnrecognizedShape
	}
}

// Delegatable reports whether the declaration may delegate to the shared
// table. Path- and git-sourced declarations keep their local source
// untouched; TargetList defers to its elements.
func (d *Declaration) Delegatable() bool {
	switch d.Kind {
	case VersionString, TargetList:
		return true
	case InlineAttributes, Block:
		return !d.attrs.Has(pathKey) && !d.attrs.Has(gitKey)
	}
	return false
}

// HasVersion reports whether the declaration pins a version locally.
func (d *Declaration) HasVersion() bool {
	switch d.Kind {
	case VersionString:
		return true
	case InlineAttributes, Block:
		return d.attrs.Has(versionKey)
	case TargetList:
		for _, t := range d.targets {
			if t.Has(versionKey) {
				return true
			}
		}
	}
	return false
}

// RemoveVersion drops the local version attribute from an attribute-backed
// declaration and reports whether one was present. It does not apply to
// VersionString (the whole value is the version) or TargetList (callers
// recurse into the elements).
func (d *Declaration) RemoveVersion() bool {
	if d.attrs == nil {
		return false
	}
	return d.attrs.Delete(versionKey)
}

// Marker returns the delegation marker value of an attribute-backed
// declaration. present is false when the marker key is absent.
func (d *Declaration) Marker() (value, present bool) {
	if d.attrs == nil {
		return false, false
	}
	return d.attrs.Bool(markerKey)
}

// SetMarker sets the delegation marker on an attribute-backed declaration,
// inserting the key if absent.
func (d *Declaration) SetMarker(v bool) {
	if d.attrs != nil {
		d.attrs.SetBool(markerKey, v)
	}
}

// ReplaceWithMarker rewrites a VersionString declaration into a minimal
// attribute set holding only the delegation marker, discarding the version.
func (d *Declaration) ReplaceWithMarker() {
	if d.Kind == VersionString {
		d.entry.SetValue("{ " + markerKey + " = true }")
	}
}

// Elements returns the per-target blocks of a TargetList, each wrapped as
// a Block declaration.
func (d *Declaration) Elements() []*Declaration {
	elems := make([]*Declaration, 0, len(d.targets))
	for _, t := range d.targets {
		elems = append(elems, &Declaration{Kind: Block, attrs: t})
	}
	return elems
}
