package selection

import (
	"fmt"

	"github.com/hanpama/graphkit/internal/schema"
)

// Callback receives the decoded values of a scalar field.
//
// Accepts reports whether the callback can take values of the named scalar
// type; it is checked once when the selection is built. Bind converts one
// canonical decoded value (string, int64, float64, bool, or any JSON value
// for enums and custom scalars) and returns the invocation to run later.
type Callback interface {
	Accepts(scalar string) bool
	Bind(v any) (func(), error)
}

// Scalar lists the Go types a typed callback may receive.
type Scalar interface {
	string | int | int64 | float64 | bool
}

// Value wraps fn as a callback receiving decoded values of type T.
//
// Value[string] accepts enums and custom scalars as well as String and ID.
// Custom scalars are passed through as generic JSON, so a custom scalar whose
// wire form is not a JSON string fails at dispatch with MalformedResponse.
// Use Raw for those.
func Value[T Scalar](fn func(T)) Callback {
	return valueCallback[T]{fn: fn}
}

// Raw wraps fn as a callback receiving the canonical decoded value as is.
// It accepts every scalar type.
func Raw(fn func(any)) Callback {
	return rawCallback{fn: fn}
}

type valueCallback[T Scalar] struct {
	fn func(T)
}

func (c valueCallback[T]) Accepts(scalar string) bool {
	var zero T
	switch any(zero).(type) {
	case string:
		return scalar == schema.String || scalar == schema.ID || !schema.IsBuiltinScalar(scalar)
	case int, int64:
		return scalar == schema.Int
	case float64:
		return scalar == schema.Float || scalar == schema.Int
	case bool:
		return scalar == schema.Boolean
	}
	return false
}

func (c valueCallback[T]) Bind(v any) (func(), error) {
	t, err := convert[T](v)
	if err != nil {
		return nil, err
	}
	return func() { c.fn(t) }, nil
}

func convert[T Scalar](v any) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := v.(string)
		if !ok {
			return out, fmt.Errorf("cannot use %T as string", v)
		}
		*p = s
	case *int:
		n, ok := v.(int64)
		if !ok {
			return out, fmt.Errorf("cannot use %T as int", v)
		}
		*p = int(n)
	case *int64:
		n, ok := v.(int64)
		if !ok {
			return out, fmt.Errorf("cannot use %T as int64", v)
		}
		*p = n
	case *float64:
		switch n := v.(type) {
		case float64:
			*p = n
		case int64:
			*p = float64(n)
		default:
			return out, fmt.Errorf("cannot use %T as float64", v)
		}
	case *bool:
		b, ok := v.(bool)
		if !ok {
			return out, fmt.Errorf("cannot use %T as bool", v)
		}
		*p = b
	}
	return out, nil
}

type rawCallback struct {
	fn func(any)
}

func (rawCallback) Accepts(string) bool { return true }

func (c rawCallback) Bind(v any) (func(), error) {
	return func() { c.fn(v) }, nil
}
