// Package dispatch routes a decoded JSON response through a selection tree to
// the callbacks of its scalar fields.
//
// Dispatch is two-phase. Prepare decodes the whole value against the tree
// into an ordered Plan of deliveries without invoking anything; Run then
// invokes them. A value that fails to decode therefore fires no callbacks.
//
// Null and absent values are skipped silently. Object fields accept a list
// and object-list fields accept a single object; see Prepare.
package dispatch

import (
	"strconv"

	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/selection"
	"github.com/tidwall/gjson"
)

// Plan is an ordered list of pending callback invocations.
type Plan struct {
	deliveries []func()
}

// Len returns the number of callback invocations in the plan.
func (p *Plan) Len() int { return len(p.deliveries) }

// Run invokes every delivery in order.
func (p *Plan) Run() {
	for _, d := range p.deliveries {
		d()
	}
}

// Dispatch decodes v against root and, when the whole value decodes, invokes
// the callbacks in response order.
func Dispatch(v gjson.Result, root *selection.Node) error {
	var path gqlerr.Path
	if name := root.Name(); name != "" {
		path = gqlerr.Path{name}
	}
	plan, err := Prepare(v, root, path)
	if err != nil {
		return err
	}
	plan.Run()
	return nil
}

// Operation dispatches the segment of data that belongs to op.
func Operation(data gjson.Result, op selection.Operation) error {
	plan, err := PrepareOperation(data, op)
	if err != nil {
		return err
	}
	plan.Run()
	return nil
}

// PrepareOperation decodes data.<op.Name> against op.Root.
func PrepareOperation(data gjson.Result, op selection.Operation) (*Plan, error) {
	return Prepare(data.Get(op.Name), op.Root, gqlerr.Path{op.Name})
}

// Prepare decodes v against n and returns the deliveries it would make.
//
// Object and ObjectList nodes try two shapes. Object tries a single object
// first and falls back to a list, delivering once per element. ObjectList
// tries a list first and falls back to a single object treated as a
// one-element list. Scalar nodes get the same symmetric fallback. Nested
// lists are flattened and null elements are skipped. Unknown keys in the
// response are ignored.
func Prepare(v gjson.Result, n *selection.Node, path gqlerr.Path) (*Plan, error) {
	p := &Plan{}
	if err := p.node(v, n, path); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) node(v gjson.Result, n *selection.Node, path gqlerr.Path) error {
	if isNull(v) {
		return nil
	}
	switch n.Kind() {
	case schema.KindObject, schema.KindObjectList:
		switch {
		case v.IsObject():
			return p.object(v, n, path)
		case v.IsArray():
			return p.list(v, n, path, p.object)
		}
		return gqlerr.Errorf(gqlerr.MalformedResponse, path, "expected %s of %s, got %s", shapeName(n.Kind()), typeName(n), describe(v))
	default:
		if v.IsArray() {
			return p.list(v, n, path, p.scalar)
		}
		return p.scalar(v, n, path)
	}
}

func (p *Plan) object(v gjson.Result, n *selection.Node, path gqlerr.Path) error {
	if !v.IsObject() {
		return gqlerr.Errorf(gqlerr.MalformedResponse, path, "expected object of %s, got %s", typeName(n), describe(v))
	}
	for _, c := range n.Children() {
		name := c.Name()
		if err := p.node(v.Get(name), c, path.Append(name)); err != nil {
			return err
		}
	}
	return nil
}

type elementFunc func(v gjson.Result, n *selection.Node, path gqlerr.Path) error

func (p *Plan) list(v gjson.Result, n *selection.Node, path gqlerr.Path, elem elementFunc) error {
	for i, item := range v.Array() {
		itemPath := path.Append(i)
		switch {
		case isNull(item):
			continue
		case item.IsArray():
			if err := p.list(item, n, itemPath, elem); err != nil {
				return err
			}
		default:
			if err := elem(item, n, itemPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Plan) scalar(v gjson.Result, n *selection.Node, path gqlerr.Path) error {
	decoded, err := DecodeScalar(n.Field().Scalar, v)
	if err != nil {
		return gqlerr.Wrap(gqlerr.MalformedResponse, path, err)
	}
	fire, err := n.Callback().Bind(decoded)
	if err != nil {
		return gqlerr.Wrap(gqlerr.MalformedResponse, path, err)
	}
	p.deliveries = append(p.deliveries, fire)
	return nil
}

// DecodeScalar converts a JSON value to the canonical Go value of the named
// scalar: string for String and ID, int64 for Int, float64 for Float, bool
// for Boolean. Numeric IDs keep their JSON text. Enums and custom scalars
// decode to the generic JSON value.
func DecodeScalar(scalar string, v gjson.Result) (any, error) {
	switch scalar {
	case schema.String:
		if v.Type != gjson.String {
			return nil, &DecodeError{Scalar: scalar, Got: describe(v)}
		}
		return v.Str, nil
	case schema.ID:
		switch v.Type {
		case gjson.String:
			return v.Str, nil
		case gjson.Number:
			return v.Raw, nil
		}
		return nil, &DecodeError{Scalar: scalar, Got: describe(v)}
	case schema.Int:
		if v.Type != gjson.Number {
			return nil, &DecodeError{Scalar: scalar, Got: describe(v)}
		}
		i, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			return nil, &DecodeError{Scalar: scalar, Got: "number " + v.Raw}
		}
		return i, nil
	case schema.Float:
		if v.Type != gjson.Number {
			return nil, &DecodeError{Scalar: scalar, Got: describe(v)}
		}
		return v.Num, nil
	case schema.Boolean:
		if v.Type != gjson.True && v.Type != gjson.False {
			return nil, &DecodeError{Scalar: scalar, Got: describe(v)}
		}
		return v.Bool(), nil
	default:
		return v.Value(), nil
	}
}

// DecodeError reports a JSON value that does not fit a scalar type.
type DecodeError struct {
	Scalar string
	Got    string
}

func (e *DecodeError) Error() string {
	return "cannot decode " + e.Got + " as " + e.Scalar
}

func isNull(v gjson.Result) bool {
	return !v.Exists() || v.Type == gjson.Null
}

func describe(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	}
	return v.Type.String()
}

func shapeName(k schema.Kind) string {
	if k.IsList() {
		return "list"
	}
	return "object"
}

func typeName(n *selection.Node) string {
	if t := n.Type(); t != nil {
		return t.Name
	}
	return "?"
}
