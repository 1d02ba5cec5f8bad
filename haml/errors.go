package haml

import (
	"fmt"
	"strconv"
)

// An ErrorKind tells apart the different reasons a compilation can fail.
type ErrorKind uint32

const (
	// StructuralError covers inconsistent indentation, illegal nesting,
	// unknown filters and unmatched directives.
	StructuralError ErrorKind = iota
	// AttributeSyntaxError means a malformed {...} attribute literal.
	AttributeSyntaxError
	// FilterUnavailableError means a filter collaborator is not configured
	// or reports itself as unavailable.
	FilterUnavailableError
	// FilterExecutionError means a filter collaborator failed while running.
	FilterExecutionError
)

// String returns a string representation of the ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case StructuralError:
		return "structural error"
	case AttributeSyntaxError:
		return "attribute syntax error"
	case FilterUnavailableError:
		return "filter unavailable"
	case FilterExecutionError:
		return "filter execution error"
	}
	return "Invalid(" + strconv.Itoa(int(k)) + ")"
}

// ParseError is the only error type returned by the compiler.
// Cause holds the underlying error when a collaborator failed, and is
// reachable with errors.Unwrap.
type ParseError struct {
	Kind  ErrorKind
	Line  int
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func newError(kind ErrorKind, line int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind: kind,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func structuralError(line int, format string, args ...any) *ParseError {
	return newError(StructuralError, line, format, args...)
}
