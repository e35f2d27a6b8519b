package executor

import "github.com/vektah/gqlparser/v2/gqlerror"

// Result describes a completed request.
type Result struct {
	// Document is the exact text that was sent.
	Document string
	// Errors holds the response's "errors" member as sent by the server.
	Errors gqlerror.List
	// Deliveries counts the callback invocations made while dispatching.
	Deliveries int
}

// HasErrors reports whether the server returned any errors.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }
