package document

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/schema/schematest"
	"github.com/hanpama/graphkit/internal/selection"
	"github.com/hanpama/graphkit/internal/value"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

var str = selection.Value(func(string) {})

func mustOperation(t *testing.T, root *schema.Type, sel selection.Selector) selection.Operation {
	t.Helper()
	op, err := selection.NewOperation(root, sel)
	require.NoError(t, err)
	return op
}

// requireValid checks that the rendered document is accepted by a GraphQL
// parser and validator for the fixture schema.
func requireValid(t *testing.T, doc string) {
	t.Helper()
	s, err := language.LoadSchema("users.graphql", schematest.SDL)
	require.NoError(t, err)
	_, err = language.ValidateQuery(s, doc)
	require.NoError(t, err, doc)
}

func TestSerialize_UserScenario(t *testing.T) {
	s := schematest.Users()
	op := mustOperation(t, s.GetQueryType(), selection.Object("user",
		selection.Leaf("id", str),
		selection.Leaf("name", str),
	).WithArgs(map[string]any{"id": "1"}))

	got := Serialize([]selection.Operation{op}, language.Query)
	if diff := cmp.Diff(`query {user(id: "1", ){ id name }}`, got); diff != "" {
		t.Fatalf("Serialize mismatch (-want +got):\n%s", diff)
	}
	requireValid(t, got)
}

func TestSerialize_Golden(t *testing.T) {
	s := schematest.Users()
	q, m := s.GetQueryType(), s.GetMutationType()

	cases := []struct {
		name string
		kind language.Operation
		ops  []selection.Operation
	}{
		{
			name: "nested_defaults",
			kind: language.Query,
			ops: []selection.Operation{
				mustOperation(t, q, selection.Object("users",
					selection.Object("posts", selection.Leaf("title", str)),
					selection.Object("address",
						selection.Object("country", selection.Leaf("code", str)),
						selection.Leaf("city", str),
					),
					selection.Leaf("id", str),
				)),
			},
		},
		{
			name: "batch_query",
			kind: language.Query,
			ops: []selection.Operation{
				mustOperation(t, q, selection.Object("user", selection.Leaf("id", str)).WithArgs(map[string]any{"id": "1"})),
				mustOperation(t, q, selection.Leaf("version", str)),
				mustOperation(t, q, selection.Object("countries", selection.Leaf("name", str), selection.Leaf("code", str))),
			},
		},
		{
			name: "batch_mutation",
			kind: language.Mutation,
			ops: []selection.Operation{
				mustOperation(t, m, selection.Object("createUser",
					selection.Leaf("role", str),
					selection.Leaf("id", str),
				).WithArgs(map[string]any{"name": "Ada"})),
				mustOperation(t, m, selection.Leaf("deleteUser", selection.Value(func(bool) {})).
					WithArgs(map[string]any{"id": "2"})),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Serialize(c.ops, c.kind)
			requireValid(t, got)
			g := goldie.New(t)
			g.Assert(t, c.name, []byte(got))
		})
	}
}

func TestSerialize_InputObjectArguments(t *testing.T) {
	s := schematest.Users()
	type filter struct {
		Name *string     `graphql:"name"`
		Role value.Enum  `graphql:"role"`
		Skip interface{} `graphql:"-"`
	}
	ada := "Ada"

	cases := []struct {
		name   string
		filter any
		want   string
	}{
		{"map", map[string]any{"name": "Ada", "role": nil}, `query {users(first: 10, filter: {name: "Ada", }, ){ id }}`},
		{"object", value.Object{{Name: "role", Value: value.Enum("ADMIN")}}, `query {users(first: 10, filter: {role: ADMIN, }, ){ id }}`},
		{"struct", filter{Name: &ada, Role: "MEMBER"}, `query {users(first: 10, filter: {name: "Ada", role: MEMBER, }, ){ id }}`},
		{"nil pointer omitted", (*filter)(nil), `query {users(first: 10, ){ id }}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			op := mustOperation(t, s.GetQueryType(), selection.Object("users", selection.Leaf("id", str)).
				WithArgs(map[string]any{"filter": c.filter}))
			got := Serialize([]selection.Operation{op}, language.Query)
			require.Equal(t, c.want, got)
			requireValid(t, got)
		})
	}
}

func TestSerialize_ParenthesisIffArguments(t *testing.T) {
	s := schematest.Users()
	user := s.Types["User"]

	for _, f := range user.Fields {
		var sel selection.Selector
		if f.Kind.IsObject() {
			sel = selection.Object(f.Name, selection.Leaf(f.Type.Fields[0].Name, selection.Raw(func(any) {})))
		} else {
			sel = selection.Leaf(f.Name, selection.Raw(func(any) {}))
		}
		root, err := selection.Root(user, sel)
		require.NoError(t, err)
		n := root.Children()[0]

		got := Selection(n)
		require.Equal(t, n.HasArguments(), strings.HasPrefix(got, f.Name+"("), got)
		require.NotContains(t, got, "null", got)
	}
}

func TestSerialize_OmitsAbsentArguments(t *testing.T) {
	s := schematest.Users()
	op := mustOperation(t, s.GetQueryType(), selection.Object("country", selection.Leaf("code", str)).
		WithArgs(map[string]any{"code": nil}))
	got := Serialize([]selection.Operation{op}, language.Query)
	require.Equal(t, `query {country { code }}`, got)
	requireValid(t, got)
}

func TestSerialize_ScalarArguments(t *testing.T) {
	typ := schema.NewType("Query", "").
		AddField(schema.NewScalarField("greeting", schema.String).
			AddArgument(schema.NewArgument("name", "String")).
			AddArgument(schema.NewArgument("times", "Int").SetDefault(1)))
	root, err := selection.Root(typ, selection.Leaf("greeting", str).WithArgs(map[string]any{"name": "Ada"}))
	require.NoError(t, err)
	require.Equal(t, `greeting(name: "Ada", times: 1, )`, Selection(root.Children()[0]))
}
