package introspection

import "github.com/hanpama/graphkit/internal/schema"

// typeRefDepth bounds the ofType chain that is requested. Four levels cover
// [T!]!; the rest leaves room for nested lists.
const typeRefDepth = 7

// metaRoot is the query root holding __schema. Field order matters: the
// first field of each type marks the start of a new entry while collecting.
var metaRoot = buildMeta()

func buildMeta() *schema.Type {
	typ := schema.NewType("__Type", "")
	field := schema.NewType("__Field", "")
	input := schema.NewType("__InputValue", "")
	sch := schema.NewType("__Schema", "")

	typ.
		AddField(schema.NewScalarField("kind", "__TypeKind")).
		AddField(schema.NewScalarField("name", schema.String)).
		AddField(schema.NewScalarField("description", schema.String)).
		AddField(schema.NewObjectListField("fields", field).
			AddArgument(schema.NewArgument("includeDeprecated", "Boolean").SetDefault(false))).
		AddField(schema.NewObjectField("ofType", typ))

	field.
		AddField(schema.NewScalarField("name", schema.String)).
		AddField(schema.NewScalarField("description", schema.String)).
		AddField(schema.NewObjectListField("args", input)).
		AddField(schema.NewObjectField("type", typ))

	input.
		AddField(schema.NewScalarField("name", schema.String)).
		AddField(schema.NewScalarField("description", schema.String)).
		AddField(schema.NewObjectField("type", typ)).
		AddField(schema.NewScalarField("defaultValue", schema.String))

	sch.
		AddField(schema.NewObjectField("queryType", typ)).
		AddField(schema.NewObjectField("mutationType", typ)).
		AddField(schema.NewObjectListField("types", typ))

	return schema.NewType("Query", "").AddField(schema.NewObjectField("__schema", sch))
}
