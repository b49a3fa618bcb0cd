// Package manifest consolidates duplicated dependency declarations across
// the manifests of a Cargo workspace.
//
// The engine counts how often each registry-sourced dependency appears
// across the workspace inventory, promotes the ones that clear a minimum
// occurrence threshold into the root manifest's [workspace.dependencies]
// table, and rewrites each member manifest so the promoted dependencies
// delegate to the shared entry with workspace = true instead of pinning a
// version locally. All edits are format-preserving: comments, ordering,
// and unrelated attributes (features, optional, ...) survive untouched.
//
// Processing is strictly ordered. The root manifest is rewritten and
// written to disk before any member is touched, because members delegate
// to names that must exist in the root. Any error aborts the run; files
// already written stay written, files not yet reached stay untouched.
package manifest
