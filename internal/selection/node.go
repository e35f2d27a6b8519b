// Package selection builds validated selection trees against Type Descriptors.
//
// A tree is built once per call site, is read-only afterwards and is consumed
// twice: by the document package to render the request text and by the
// dispatch package to route response values to callbacks.
package selection

import (
	"sort"

	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/value"
)

// Node is one selected field, or the synthetic root of an operation.
type Node struct {
	field    *schema.Field
	typ      *schema.Type
	kind     schema.Kind
	args     value.Object
	children []*Node
	callback Callback
}

// Field returns the field descriptor; nil for a synthetic root.
func (n *Node) Field() *schema.Field { return n.field }

// Type returns the descriptor children are selected from; nil for scalars.
func (n *Node) Type() *schema.Type { return n.typ }

// Name returns the field name; empty for a synthetic root.
func (n *Node) Name() string {
	if n.field == nil {
		return ""
	}
	return n.field.Name
}

func (n *Node) Kind() schema.Kind { return n.kind }

// Arguments returns the effective arguments in declaration order. Entries
// may be absent (nil) when explicitly supplied as nil.
func (n *Node) Arguments() value.Object { return n.args }

// Children returns the selected children in schema field order.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) Callback() Callback { return n.callback }

func (n *Node) IsLeaf() bool { return !n.kind.IsObject() }

// HasArguments reports whether at least one effective argument is present.
func (n *Node) HasArguments() bool {
	for _, p := range n.args {
		if !value.Absent(p.Value) {
			return true
		}
	}
	return false
}

// Build validates and assembles a node for field.
//
// Supplied arguments overlay the field's declared defaults; unknown keys are
// rejected. Scalar fields need a callback compatible with their scalar type
// and no children; object fields need no callback and at least one child
// declared on the field's type.
func Build(field *schema.Field, args map[string]any, cb Callback, children ...*Node) (*Node, error) {
	if field == nil {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, nil, "nil field")
	}
	return build(gqlerr.Path{field.Name}, field, args, cb, children)
}

func build(path gqlerr.Path, field *schema.Field, args map[string]any, cb Callback, children []*Node) (*Node, error) {
	effective, err := effectiveArguments(path, field, args)
	if err != nil {
		return nil, err
	}
	n := &Node{field: field, kind: field.Kind, args: effective}

	if !field.Kind.IsObject() {
		if len(children) > 0 {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "scalar field %s cannot have selections", field.Name)
		}
		if cb == nil {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "scalar field %s needs a callback", field.Name)
		}
		if !cb.Accepts(field.Scalar) {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "callback cannot receive %s values", field.Scalar)
		}
		n.callback = cb
		return n, nil
	}

	if cb != nil {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "object field %s cannot take a callback", field.Name)
	}
	if field.Type == nil {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "object field %s has no type descriptor", field.Name)
	}
	n.typ = field.Type
	if n.children, err = orderChildren(path, field.Type, children); err != nil {
		return nil, err
	}
	return n, nil
}

func effectiveArguments(path gqlerr.Path, field *schema.Field, args map[string]any) (value.Object, error) {
	var unknown []string
	for k := range args {
		if field.Argument(k) == nil {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "unknown argument %q on field %s", unknown[0], field.Name)
	}

	var out value.Object
	for _, a := range field.Arguments {
		v, ok := args[a.Name]
		if !ok {
			v = a.DefaultValue()
		}
		if !ok && value.Absent(v) {
			continue
		}
		out = append(out, value.Pair{Name: a.Name, Value: v})
	}
	return out, nil
}

// orderChildren checks children against typ and sorts them by declaration.
func orderChildren(path gqlerr.Path, typ *schema.Type, children []*Node) ([]*Node, error) {
	if len(children) == 0 {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "selection on %s must select at least one field", typ.Name)
	}
	type indexed struct {
		pos  int
		node *Node
	}
	seen := make(map[string]bool, len(children))
	items := make([]indexed, 0, len(children))
	for _, c := range children {
		if c == nil || c.field == nil {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "invalid child selection")
		}
		name := c.field.Name
		pos := typ.FieldIndex(name)
		if pos < 0 || typ.Fields[pos] != c.field {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path.Append(name), "field %s is not declared on %s", name, typ.Name)
		}
		if seen[name] {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path.Append(name), "field %s selected twice", name)
		}
		seen[name] = true
		items = append(items, indexed{pos: pos, node: c})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })
	out := make([]*Node, len(items))
	for i, it := range items {
		out[i] = it.node
	}
	return out, nil
}
