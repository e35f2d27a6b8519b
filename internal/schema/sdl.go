package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/graphkit/internal/language"
)

// LoadSDL builds Type Descriptors from schema definition language.
//
// Object and interface types become Types. Scalar and enum fields become
// scalar fields named after their leaf type. Fields returning unions are
// skipped because a selection cannot address union members. Argument
// defaults declared in SDL become default providers.
func LoadSDL(name, sdl string) (*Schema, error) {
	doc, err := language.LoadSchema(name, sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, err)
	}
	return FromAST(doc)
}

// FromAST builds Type Descriptors from a validated gqlparser schema.
func FromAST(doc *language.Schema) (*Schema, error) {
	s := NewSchema(doc.Description)

	names := make([]string, 0, len(doc.Types))
	for n, def := range doc.Types {
		if strings.HasPrefix(n, "__") {
			continue
		}
		if def.Kind == language.Object || def.Kind == language.Interface {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	// Types are created first so that fields can reference them regardless
	// of declaration order or cycles.
	for _, n := range names {
		s.AddType(NewType(n, doc.Types[n].Description))
	}
	for _, n := range names {
		def := doc.Types[n]
		typ := s.Types[n]
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			f, err := fieldFromAST(s, doc, fd)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", n, fd.Name, err)
			}
			if f == nil {
				continue
			}
			typ.AddField(f)
		}
	}

	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	return s, nil
}

func fieldFromAST(s *Schema, doc *language.Schema, fd *language.FieldDefinition) (*Field, error) {
	named, list := unwrapType(fd.Type)
	def, ok := doc.Types[named]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", named)
	}

	var f *Field
	switch def.Kind {
	case language.Object, language.Interface:
		if list {
			f = NewObjectListField(fd.Name, s.Types[named])
		} else {
			f = NewObjectField(fd.Name, s.Types[named])
		}
	case language.Scalar, language.Enum:
		if list {
			f = NewScalarListField(fd.Name, named)
		} else {
			f = NewScalarField(fd.Name, named)
		}
	case language.Union:
		return nil, nil
	default:
		return nil, fmt.Errorf("type %q of kind %s cannot be selected", named, def.Kind)
	}
	f.SetDescription(fd.Description)

	for _, ad := range fd.Arguments {
		arg := NewArgument(ad.Name, ad.Type.String())
		if ad.DefaultValue != nil && ad.DefaultValue.Kind != language.NullValue {
			arg.SetDefault(language.ValueToGo(ad.DefaultValue))
		}
		f.AddArgument(arg)
	}
	return f, nil
}

// unwrapType returns the named type at the bottom of t and whether any list
// wrapper was seen on the way.
func unwrapType(t *language.Type) (string, bool) {
	list := false
	for t.Elem != nil {
		list = true
		t = t.Elem
	}
	return t.NamedType, list
}
