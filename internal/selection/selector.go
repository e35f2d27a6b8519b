package selection

import (
	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/value"
)

// Selector declares a field selection by name. It is resolved against a Type
// Descriptor by Root or NewOperation.
type Selector struct {
	name     string
	args     map[string]any
	callback Callback
	children []Selector
}

// Leaf selects a scalar field delivering values to cb.
func Leaf(name string, cb Callback) Selector {
	return Selector{name: name, callback: cb}
}

// Object selects an object or object-list field.
func Object(name string, children ...Selector) Selector {
	return Selector{name: name, children: children}
}

// WithArgs returns a copy of s carrying args. Keys must be declared arguments
// of the field; omitted keys take the declared default.
func (s Selector) WithArgs(args map[string]any) Selector {
	s.args = args
	return s
}

func (s Selector) Name() string { return s.name }

func (s Selector) resolve(parent *schema.Type, path gqlerr.Path) (*Node, error) {
	path = path.Append(s.name)
	field := parent.Field(s.name)
	if field == nil {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "field %s is not declared on %s", s.name, parent.Name)
	}
	var children []*Node
	if len(s.children) > 0 {
		if !field.Kind.IsObject() {
			return nil, gqlerr.Errorf(gqlerr.SchemaViolation, path, "scalar field %s cannot have selections", s.name)
		}
		children = make([]*Node, 0, len(s.children))
		for _, c := range s.children {
			n, err := c.resolve(field.Type, path)
			if err != nil {
				return nil, err
			}
			children = append(children, n)
		}
	}
	return build(path, field, s.args, s.callback, children)
}

// Root builds a synthetic root over typ. It dispatches like an Object field
// and has neither a field descriptor nor arguments.
func Root(typ *schema.Type, children ...Selector) (*Node, error) {
	if typ == nil {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, nil, "nil root type")
	}
	nodes := make([]*Node, 0, len(children))
	for _, c := range children {
		n, err := c.resolve(typ, nil)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	ordered, err := orderChildren(nil, typ, nodes)
	if err != nil {
		return nil, err
	}
	return &Node{typ: typ, kind: schema.KindObject, children: ordered}, nil
}

// Operation is one top-level field of a document. Its response segment is
// found under data.<Name>.
type Operation struct {
	Name      string
	Arguments value.Object
	Root      *Node
}

// NewOperation resolves sel against a root operation type. The operation's
// Root is the node of the selected root field.
func NewOperation(rootType *schema.Type, sel Selector) (Operation, error) {
	if rootType == nil {
		return Operation{}, gqlerr.Errorf(gqlerr.SchemaViolation, gqlerr.Path{sel.name}, "schema has no root type for this operation")
	}
	n, err := sel.resolve(rootType, nil)
	if err != nil {
		return Operation{}, err
	}
	return Operation{Name: sel.name, Arguments: n.args, Root: n}, nil
}
