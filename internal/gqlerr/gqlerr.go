// Package gqlerr defines the error taxonomy shared by the selection, dispatch
// and executor packages.
//
// Every error carries a Kind. Structural kinds (SchemaViolation and
// MalformedResponse) also carry the response path of the offending field.
// Callers match kinds with errors.Is against the exported sentinels:
//
//	if errors.Is(err, gqlerr.ErrMalformedResponse) { ... }
package gqlerr

import (
	"fmt"
	"strings"
)

type Kind int

const (
	// SchemaViolation reports a selection that references an undeclared
	// field or argument. It is raised while the selection tree is built and
	// never reaches the network.
	SchemaViolation Kind = iota + 1
	// InvalidEndpoint reports a missing or malformed target address.
	InvalidEndpoint
	// RequestFailed reports a transport or network failure, including
	// cancellation of the calling context.
	RequestFailed
	// MalformedResponse reports a non-JSON body or a field value that matches
	// neither the primary nor the fallback decode shape.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case SchemaViolation:
		return "schema violation"
	case InvalidEndpoint:
		return "invalid endpoint"
	case RequestFailed:
		return "request failed"
	case MalformedResponse:
		return "malformed response"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrSchemaViolation   = &Error{Kind: SchemaViolation}
	ErrInvalidEndpoint   = &Error{Kind: InvalidEndpoint}
	ErrRequestFailed     = &Error{Kind: RequestFailed}
	ErrMalformedResponse = &Error{Kind: MalformedResponse}
)

// Path locates a field in a selection or response. Elements are field names
// (string) or list indices (int).
type Path []any

// Append returns a copy of p with elem appended; p itself is never mutated.
func (p Path) Append(elem any) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// Error is the concrete error type for every Kind.
type Error struct {
	Kind    Kind
	Path    Path
	Message string
	Err     error
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, path Path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and path to an underlying error.
func Wrap(kind Kind, path Path, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	switch {
	case e.Message != "" && e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Message)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels of the same Kind. A sentinel has no path, message or
// wrapped error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Path != nil || t.Message != "" || t.Err != nil {
		return t == e
	}
	return t.Kind == e.Kind
}
