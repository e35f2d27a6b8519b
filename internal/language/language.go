package language

import (
	"fmt"
	"strconv"

	"github.com/hanpama/graphkit/internal/value"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL, adding the built-in prelude.
func LoadSchema(name, source string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateQuery parses source and validates it against s.
func ValidateQuery(s *Schema, source string) (*QueryDocument, error) {
	doc, errs := gqlparser.LoadQuery(s, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// ParseValue parses a single GraphQL input literal such as `"x"`, `12`,
// `ASC` or `{limit: 2}` into the Go form understood by value.Format.
func ParseValue(literal string) (any, error) {
	doc, err := ParseQuery("{f(v: " + literal + ")}")
	if err != nil {
		return nil, fmt.Errorf("parse value %q: %w", literal, err)
	}
	if len(doc.Operations) != 1 || len(doc.Operations[0].SelectionSet) != 1 {
		return nil, fmt.Errorf("parse value %q: not a single literal", literal)
	}
	f, ok := doc.Operations[0].SelectionSet[0].(*ast.Field)
	if !ok || len(f.Arguments) != 1 {
		return nil, fmt.Errorf("parse value %q: not a single literal", literal)
	}
	if f.Arguments[0].Value.Kind == Variable {
		return nil, fmt.Errorf("parse value %q: variables are not literals", literal)
	}
	return ValueToGo(f.Arguments[0].Value), nil
}

// ValueToGo converts an AST literal to a Go value. Enums become value.Enum and
// input objects become value.Object so that they format back unchanged.
func ValueToGo(v *Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case IntValue:
		if iv, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return int(iv)
		}
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case StringValue, BlockValue:
		return v.Raw
	case BooleanValue:
		return v.Raw == "true"
	case NullValue:
		return nil
	case EnumValue:
		return value.Enum(v.Raw)
	case ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = ValueToGo(c.Value)
		}
		return out
	case ObjectValue:
		out := make(value.Object, 0, len(v.Children))
		for _, c := range v.Children {
			out = append(out, value.Pair{Name: c.Name, Value: ValueToGo(c.Value)})
		}
		return out
	default:
		return nil
	}
}
