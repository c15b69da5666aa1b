package source

import (
	"fmt"
	"strings"
)

// SchemaError reports an identity file without a recognized identifier column.
type SchemaError struct {
	Path    string
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: CSV must have a %s column; columns found: [%s]",
		e.Path, strings.Join(idColumns, " or "), strings.Join(e.Columns, ", "))
}

// EmptyInputError reports an identity file with no usable identifiers.
type EmptyInputError struct {
	Path string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no user ids found", e.Path)
}

// ValueError reports an identifier cell that is not an integer. Fractional
// values such as "3.5" are rejected here rather than truncated to 3.
type ValueError struct {
	Path  string
	Row   int
	Value string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: row %d: invalid user id %q", e.Path, e.Row, e.Value)
}
