// Package introspection loads Type Descriptors from a live endpoint.
//
// The introspection query is an ordinary selection over a small meta-schema,
// so it is serialized and dispatched like any other operation. Callbacks fire
// depth-first in selection order, which lets a Collector rebuild the nested
// __Type records from the flat stream of leaf values.
package introspection

import (
	"context"
	"fmt"
	"strings"

	"github.com/hanpama/graphkit/internal/executor"
	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/selection"
)

// Querier executes query operations. *executor.Executor implements it.
type Querier interface {
	Query(ctx context.Context, ops ...executor.Operation) (*executor.Result, error)
}

// Fetch runs the introspection query through q and converts the answer.
func Fetch(ctx context.Context, q Querier) (*schema.Schema, error) {
	op, c, err := Operation()
	if err != nil {
		return nil, err
	}
	res, err := q.Query(ctx, op)
	if err != nil {
		return nil, err
	}
	if res.HasErrors() && len(c.types) == 0 {
		return nil, fmt.Errorf("introspection: %w", res.Errors)
	}
	return c.Schema()
}

// Operation returns the __schema operation and the Collector its callbacks
// write to. A Collector serves a single execution.
func Operation() (executor.Operation, *Collector, error) {
	c := &Collector{}
	op, err := selection.NewOperation(metaRoot, c.selector())
	if err != nil {
		return executor.Operation{}, nil, err
	}
	return op, c, nil
}

// Collector accumulates introspection values.
type Collector struct {
	queryType    string
	mutationType string
	types        []*typeInfo
}

type typeInfo struct {
	kind        string
	name        string
	description string
	fields      []*fieldInfo
}

type fieldInfo struct {
	name        string
	description string
	args        []*argInfo
	typ         typeRef
}

type argInfo struct {
	name         string
	description  string
	defaultValue *string
	typ          typeRef
}

// typeRef is an unwrapped __Type chain: the kinds from outermost to
// innermost and the name of the named type at the bottom.
type typeRef struct {
	kinds []string
	name  string
}

func (r typeRef) isList() bool {
	for _, k := range r.kinds {
		if k == "LIST" {
			return true
		}
	}
	return false
}

// String renders the type expression, e.g. [ID!]!.
func (r typeRef) String() string {
	return r.render(0)
}

func (r typeRef) render(i int) string {
	if i >= len(r.kinds) {
		return r.name
	}
	switch r.kinds[i] {
	case "NON_NULL":
		return r.render(i+1) + "!"
	case "LIST":
		return "[" + r.render(i+1) + "]"
	}
	return r.name
}

func (c *Collector) lastType() *typeInfo {
	if len(c.types) == 0 {
		c.types = append(c.types, &typeInfo{})
	}
	return c.types[len(c.types)-1]
}

func (c *Collector) lastField() *fieldInfo {
	t := c.lastType()
	if len(t.fields) == 0 {
		t.fields = append(t.fields, &fieldInfo{})
	}
	return t.fields[len(t.fields)-1]
}

func (c *Collector) lastArg() *argInfo {
	f := c.lastField()
	if len(f.args) == 0 {
		f.args = append(f.args, &argInfo{})
	}
	return f.args[len(f.args)-1]
}

func (c *Collector) selector() selection.Selector {
	str := func(fn func(string)) selection.Callback { return selection.Value(fn) }

	return selection.Object("__schema",
		selection.Object("queryType", selection.Leaf("name", str(func(v string) { c.queryType = v }))),
		selection.Object("mutationType", selection.Leaf("name", str(func(v string) { c.mutationType = v }))),
		selection.Object("types",
			selection.Leaf("kind", str(func(v string) { c.types = append(c.types, &typeInfo{kind: v}) })),
			selection.Leaf("name", str(func(v string) { c.lastType().name = v })),
			selection.Leaf("description", str(func(v string) { c.lastType().description = v })),
			selection.Object("fields",
				selection.Leaf("name", str(func(v string) {
					t := c.lastType()
					t.fields = append(t.fields, &fieldInfo{name: v})
				})),
				selection.Leaf("description", str(func(v string) { c.lastField().description = v })),
				selection.Object("args",
					selection.Leaf("name", str(func(v string) {
						f := c.lastField()
						f.args = append(f.args, &argInfo{name: v})
					})),
					selection.Leaf("description", str(func(v string) { c.lastArg().description = v })),
					typeRefSelector("type", func() *typeRef { return &c.lastArg().typ }, typeRefDepth),
					selection.Leaf("defaultValue", str(func(v string) { c.lastArg().defaultValue = &v })),
				),
				typeRefSelector("type", func() *typeRef { return &c.lastField().typ }, typeRefDepth),
			).WithArgs(map[string]any{"includeDeprecated": true}),
		),
	)
}

func typeRefSelector(name string, target func() *typeRef, depth int) selection.Selector {
	children := []selection.Selector{
		selection.Leaf("kind", selection.Value(func(v string) {
			r := target()
			r.kinds = append(r.kinds, v)
		})),
		selection.Leaf("name", selection.Value(func(v string) { target().name = v })),
	}
	if depth > 1 {
		children = append(children, typeRefSelector("ofType", target, depth-1))
	}
	return selection.Object(name, children...)
}

// Schema converts the collected values to Type Descriptors. Object and
// interface types become Types; union-typed fields are skipped and
// introspection types are left out.
func (c *Collector) Schema() (*schema.Schema, error) {
	if c.queryType == "" {
		return nil, fmt.Errorf("introspection: no query type")
	}
	kinds := make(map[string]string, len(c.types))
	s := schema.NewSchema("")
	for _, t := range c.types {
		kinds[t.name] = t.kind
		if strings.HasPrefix(t.name, "__") {
			continue
		}
		if t.kind == "OBJECT" || t.kind == "INTERFACE" {
			s.AddType(schema.NewType(t.name, t.description))
		}
	}

	for _, t := range c.types {
		typ, ok := s.Types[t.name]
		if !ok {
			continue
		}
		for _, fi := range t.fields {
			if strings.HasPrefix(fi.name, "__") {
				continue
			}
			f, err := convertField(s, kinds, fi)
			if err != nil {
				return nil, fmt.Errorf("introspection: %s.%s: %w", t.name, fi.name, err)
			}
			if f != nil {
				typ.AddField(f)
			}
		}
	}

	s.SetQueryType(c.queryType)
	if c.mutationType != "" {
		s.SetMutationType(c.mutationType)
	}
	return s, nil
}

func convertField(s *schema.Schema, kinds map[string]string, fi *fieldInfo) (*schema.Field, error) {
	named := fi.typ.name
	var f *schema.Field
	switch kinds[named] {
	case "OBJECT", "INTERFACE":
		if fi.typ.isList() {
			f = schema.NewObjectListField(fi.name, s.Types[named])
		} else {
			f = schema.NewObjectField(fi.name, s.Types[named])
		}
	case "SCALAR", "ENUM":
		if fi.typ.isList() {
			f = schema.NewScalarListField(fi.name, named)
		} else {
			f = schema.NewScalarField(fi.name, named)
		}
	case "UNION":
		return nil, nil
	case "":
		return nil, fmt.Errorf("unknown type %q", named)
	default:
		return nil, fmt.Errorf("type %q of kind %s cannot be selected", named, kinds[named])
	}
	f.SetDescription(fi.description)

	for _, ai := range fi.args {
		arg := schema.NewArgument(ai.name, ai.typ.String())
		if ai.defaultValue != nil && *ai.defaultValue != "null" {
			v, err := language.ParseValue(*ai.defaultValue)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", ai.name, err)
			}
			arg.SetDefault(v)
		}
		f.AddArgument(arg)
	}
	return f, nil
}
