package schema

import (
	"sort"
	"strings"

	"github.com/hanpama/graphkit/internal/value"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type names sorted lexicographically, fields in
// declaration order. Non-builtin leaf types are declared as scalars since
// descriptors do not carry enum values.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var b strings.Builder

	renderSchemaDefinition(&b, s)

	typeNames := make([]string, 0, len(s.Types))
	scalars := map[string]struct{}{}
	for name, typ := range s.Types {
		typeNames = append(typeNames, name)
		for _, f := range typ.Fields {
			if !f.Kind.IsObject() && f.Scalar != "" && !IsBuiltinScalar(f.Scalar) {
				scalars[f.Scalar] = struct{}{}
			}
		}
	}
	sort.Strings(typeNames)

	scalarNames := make([]string, 0, len(scalars))
	for name := range scalars {
		scalarNames = append(scalarNames, name)
	}
	sort.Strings(scalarNames)
	for _, name := range scalarNames {
		b.WriteString("scalar ")
		b.WriteString(name)
		b.WriteString("\n\n")
	}

	for _, name := range typeNames {
		renderObject(&b, s.Types[name])
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ----- render helpers -----

func renderSchemaDefinition(b *strings.Builder, s *Schema) {
	if (s.QueryType == "" || s.QueryType == "Query") && (s.MutationType == "" || s.MutationType == "Mutation") {
		return
	}
	b.WriteString("schema {\n")
	if s.QueryType != "" {
		b.WriteString("  query: ")
		b.WriteString(s.QueryType)
		b.WriteString("\n")
	}
	if s.MutationType != "" {
		b.WriteString("  mutation: ")
		b.WriteString(s.MutationType)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
	b.WriteString(indent)
	b.WriteString(strings.ReplaceAll(desc, "\"\"\"", "\\\"\"\""))
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("\"\"\"\n")
}

func renderObject(b *strings.Builder, typ *Type) {
	renderDescription(b, typ.Description, "")
	b.WriteString("type ")
	b.WriteString(typ.Name)
	b.WriteString(" {\n")
	for _, field := range typ.Fields {
		renderField(b, field)
	}
	b.WriteString("}\n\n")
}

func renderField(b *strings.Builder, field *Field) {
	renderDescription(b, field.Description, "  ")
	b.WriteString("  ")
	b.WriteString(field.Name)
	if len(field.Arguments) > 0 {
		b.WriteString("(")
		for i, arg := range field.Arguments {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.Name)
			b.WriteString(": ")
			b.WriteString(arg.Type)
			if def := arg.DefaultValue(); !value.Absent(def) {
				b.WriteString(" = ")
				b.WriteString(value.Format(def))
			}
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(renderTypeRef(field))
	b.WriteString("\n")
}

func renderTypeRef(field *Field) string {
	if field.Kind.IsList() {
		return "[" + field.TypeName() + "]"
	}
	return field.TypeName()
}
