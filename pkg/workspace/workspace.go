// Package workspace discovers the modules of a multi-crate Cargo workspace
// and the dependencies each module declares.
//
// Discovery reads the root Cargo.toml, expands the [workspace] member
// globs, and decodes every member manifest into an ordered, read-only
// inventory. The inventory order is deterministic: the root package first
// (when the root manifest also declares one), then members in the order
// their patterns appear, with glob matches sorted. Dependency order within
// a module is deterministic as well, so downstream analysis that depends
// on "first occurrence" is reproducible across runs.
package workspace

import "fmt"

// SourceKind tells where a declared dependency comes from.
type SourceKind int

const (
	// SourceRegistry is a dependency fetched from a package registry.
	SourceRegistry SourceKind = iota
	// SourcePath is a dependency referenced by local filesystem path.
	SourcePath
	// SourceGit is a dependency fetched from a git repository.
	SourceGit
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceRegistry:
		return "registry"
	case SourcePath:
		return "path"
	case SourceGit:
		return "git"
	}
	return "unknown"
}

// Dependency is one dependency declaration of a module, as discovered from
// its manifest.
type Dependency struct {
	Name   string
	Req    string // version requirement; empty when the declaration has none
	Source SourceKind
}

// Module is one member of the workspace.
type Module struct {
	Name         string
	ManifestPath string
	Dependencies []Dependency // ordered; see package documentation
}

// Project is the discovered workspace: the root manifest plus the ordered
// member inventory. It is a read-only snapshot built once per run.
type Project struct {
	RootDir      string
	RootManifest string
	Modules      []Module
}

// DiscoveryError reports a failure while building the workspace inventory.
type DiscoveryError struct {
	Path string
	Err  error
}

// Error returns the offending path and underlying cause.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("workspace discovery failed at %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DiscoveryError) Unwrap() error { return e.Err }
