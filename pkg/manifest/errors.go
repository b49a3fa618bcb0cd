package manifest

import "fmt"

// IOError wraps a filesystem failure with the manifest path it hit.
type IOError struct {
	Path string
	Err  error
}

// Error returns the path and underlying cause.
func (e *IOError) Error() string { return fmt.Sprintf("io error at %q: %v", e.Path, e.Err) }

// Unwrap returns the underlying cause.
func (e *IOError) Unwrap() error { return e.Err }

// ParseError wraps a TOML syntax error with the manifest path it came from.
// The underlying error carries the line and column.
type ParseError struct {
	Path string
	Err  error
}

// Error returns the path and the positioned syntax error.
func (e *ParseError) Error() string { return fmt.Sprintf("toml parse error in %q: %v", e.Path, e.Err) }

// Unwrap returns the underlying positioned error.
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a manifest key that exists with the wrong shape,
// such as a dependencies key holding a scalar instead of a table.
type SchemaError struct {
	Path string
	Key  string
	Err  error
}

// Error returns the path and the offending key.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%q in %q is not a table", e.Key, e.Path)
}

// Unwrap returns the underlying shape error, if any.
func (e *SchemaError) Unwrap() error { return e.Err }

// MalformedDeclarationError reports a dependency entry whose value has a
// shape the rewriter does not recognize (e.g. an integer or an array of
// scalars).
type MalformedDeclarationError struct {
	Path       string
	Dependency string
}

// Error returns the path and dependency name.
func (e *MalformedDeclarationError) Error() string {
	return fmt.Sprintf("malformed declaration for dependency %q in %q", e.Dependency, e.Path)
}
