package schema

import "fmt"

// Schema is the set of Type Descriptors a selection can be built against.
// It is immutable once handed to callers; Types must not be mutated while a
// request built from them is in flight.
type Schema struct {
	QueryType    string
	MutationType string
	Types        map[string]*Type // object and interface types keyed by name
	Description  string
}

func NewSchema(description string) *Schema {
	return &Schema{Types: make(map[string]*Type), Description: description}
}

func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) SetQueryType(name string) *Schema    { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema { s.MutationType = name; return s }

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// Type is a Type Descriptor: a named object type with its ordered fields.
type Type struct {
	Name        string
	Description string
	Fields      []*Field
	index       map[string]int
}

func NewType(name, description string) *Type {
	return &Type{Name: name, Description: description, index: make(map[string]int)}
}

// AddField appends f. A field with the same name replaces the earlier one in
// place, keeping its position.
func (t *Type) AddField(f *Field) *Type {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[f.Name]; ok {
		t.Fields[i] = f
		return t
	}
	t.index[f.Name] = len(t.Fields)
	t.Fields = append(t.Fields, f)
	return t
}

// Field returns the field named name, or nil.
func (t *Type) Field(name string) *Field {
	if i := t.FieldIndex(name); i >= 0 {
		return t.Fields[i]
	}
	return nil
}

// FieldIndex returns the declaration position of name, or -1.
func (t *Type) FieldIndex(name string) int {
	if t.index != nil {
		if i, ok := t.index[name]; ok {
			return i
		}
		return -1
	}
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Kind classifies what a field returns.
type Kind int

const (
	KindScalar Kind = iota
	KindScalarList
	KindObject
	KindObjectList
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindScalarList:
		return "ScalarList"
	case KindObject:
		return "Object"
	case KindObjectList:
		return "ObjectList"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) IsObject() bool { return k == KindObject || k == KindObjectList }
func (k Kind) IsList() bool   { return k == KindScalarList || k == KindObjectList }

// Field is a Field Descriptor.
type Field struct {
	Name        string
	Description string
	Kind        Kind
	// Type is the nested Type Descriptor for Object and ObjectList kinds.
	Type *Type
	// Scalar names the leaf type (String, Int, Float, Boolean, ID, an enum or
	// a custom scalar) for Scalar and ScalarList kinds.
	Scalar    string
	Arguments []*Argument
}

func NewScalarField(name, scalar string) *Field {
	return &Field{Name: name, Kind: KindScalar, Scalar: scalar}
}

func NewScalarListField(name, scalar string) *Field {
	return &Field{Name: name, Kind: KindScalarList, Scalar: scalar}
}

func NewObjectField(name string, t *Type) *Field {
	return &Field{Name: name, Kind: KindObject, Type: t}
}

func NewObjectListField(name string, t *Type) *Field {
	return &Field{Name: name, Kind: KindObjectList, Type: t}
}

func (f *Field) SetDescription(d string) *Field { f.Description = d; return f }

func (f *Field) AddArgument(a *Argument) *Field {
	f.Arguments = append(f.Arguments, a)
	return f
}

// Argument returns the argument named name, or nil.
func (f *Field) Argument(name string) *Argument {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeName returns the named type the field resolves to.
func (f *Field) TypeName() string {
	if f.Kind.IsObject() {
		if f.Type == nil {
			return ""
		}
		return f.Type.Name
	}
	return f.Scalar
}

// Argument describes one field argument and its default-value provider.
type Argument struct {
	Name string
	// Type is the GraphQL type expression, e.g. "String" or "[ID!]!". It is
	// informational only.
	Type    string
	Default func() any
}

func NewArgument(name, typ string) *Argument {
	return &Argument{Name: name, Type: typ}
}

// SetDefault installs a provider that always returns v.
func (a *Argument) SetDefault(v any) *Argument {
	a.Default = func() any { return v }
	return a
}

func (a *Argument) SetDefaultFunc(fn func() any) *Argument {
	a.Default = fn
	return a
}

// DefaultValue returns the provider's value, or nil when there is none.
func (a *Argument) DefaultValue() any {
	if a.Default == nil {
		return nil
	}
	return a.Default()
}
