package reqid

import (
	"context"
	"math/rand/v2"
	"strconv"
)

// Header carries the request ID on outgoing and incoming HTTP requests.
const Header = "X-Request-Id"

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, int64) {
	id := rand.Int64()
	return WithID(parent, id), id
}

// WithID returns a copy of parent carrying id.
func WithID(parent context.Context, id int64) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(key{})
	id, ok := v.(int64)
	return id, ok
}

// Ensure returns ctx unchanged when it already carries an ID, and a child
// context with a fresh one otherwise.
func Ensure(ctx context.Context) (context.Context, int64) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	return NewContext(ctx)
}

// Format renders id for the Header value.
func Format(id int64) string { return strconv.FormatInt(id, 16) }

// Parse reads a Header value written by Format.
func Parse(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
