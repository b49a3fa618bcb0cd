package tomledit

import "fmt"

// ParseError reports a syntax error and its position in the input.
type ParseError struct {
	Line int    // 1-based line number
	Col  int    // 1-based column (byte offset within the line)
	Msg  string // what the parser expected or found
}

// Error returns the formatted position and message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

// SchemaError reports a key that exists in the document but does not have
// the table shape an operation required (e.g. a scalar where a table was
// expected, or an array of tables where a plain table was expected).
type SchemaError struct {
	Key string // dotted key path of the offending entry
}

// Error returns the offending key path.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("%q is not a table", e.Key)
}
