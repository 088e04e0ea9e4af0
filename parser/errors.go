package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupportedQuery is returned when no statement shape matches the query text.
var ErrUnsupportedQuery = errors.New("unsupported query")

// CompileError reports a statement that could not be compiled.
type CompileError struct {
	Query    string
	Fragment string
	Err      error
}

func (e *CompileError) Error() string {
	if e.Fragment != "" {
		return fmt.Sprintf("compile %q: near %q: %v", e.Query, e.Fragment, e.Err)
	}
	return fmt.Sprintf("compile %q: %v", e.Query, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LookupError reports a keyword that has no native mapping,
// e.g. an attribute type other than NUMERIC/STRING/BINARY.
type LookupError struct {
	Kind  string
	Value string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Value)
}

func compileError(query, fragment string, err error) error {
	return &CompileError{Query: query, Fragment: fragment, Err: err}
}
