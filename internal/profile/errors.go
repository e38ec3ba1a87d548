package profile

import (
	"fmt"
	"strings"
)

// SchemaError reports a track log whose structure cannot be used: a missing
// header, a missing required column or malformed CSV.
type SchemaError struct {
	Missing []string
	Line    int
	Reason  string
}

func (e *SchemaError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("schema error: missing required column(s) %s", strings.Join(e.Missing, ", "))
	case e.Line > 0:
		return fmt.Sprintf("schema error: line %d: %s", e.Line, e.Reason)
	default:
		return "schema error: " + e.Reason
	}
}

// TypeError reports a required value that is not a usable number.
type TypeError struct {
	Column string
	Line   int
	Value  string
	Reason string
}

func (e *TypeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("type error: column %q line %d: %s (value %q)", e.Column, e.Line, e.Reason, e.Value)
	}
	return fmt.Sprintf("type error: column %q: %s (value %q)", e.Column, e.Reason, e.Value)
}

// IOError reports an output location that could not be written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
