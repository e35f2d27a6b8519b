package schema

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/graphkit/internal/value"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func loadCountries(t *testing.T) *Schema {
	t.Helper()
	src, err := os.ReadFile("testdata/countries.graphql")
	require.NoError(t, err)
	s, err := LoadSDL("countries.graphql", string(src))
	require.NoError(t, err)
	return s
}

func fieldNames(t *Type) []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

func TestLoadSDL_TypesAndKinds(t *testing.T) {
	s := loadCountries(t)

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.NotNil(t, s.GetQueryType())
	require.NotNil(t, s.GetMutationType())

	// union-returning fields are not addressable
	if diff := cmp.Diff([]string{"continent", "countries", "languages"}, fieldNames(s.GetQueryType())); diff != "" {
		t.Fatalf("query fields mismatch (-want +got):\n%s", diff)
	}

	country := s.Types["Country"]
	require.NotNil(t, country)
	if diff := cmp.Diff(
		[]string{"code", "name", "capital", "continent", "languages", "population", "area", "landlocked", "updatedAt"},
		fieldNames(country),
	); diff != "" {
		t.Fatalf("country fields mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		field  string
		kind   Kind
		target string
	}{
		{"code", KindScalar, ID},
		{"continent", KindObject, "Continent"},
		{"languages", KindObjectList, "Language"},
		{"area", KindScalar, Float},
		{"updatedAt", KindScalar, "Timestamp"},
	}
	for _, c := range cases {
		f := country.Field(c.field)
		require.NotNil(t, f, c.field)
		require.Equal(t, c.kind, f.Kind, c.field)
		require.Equal(t, c.target, f.TypeName(), c.field)
	}

	// nested descriptors are shared, not copied
	require.Same(t, s.Types["Continent"], country.Field("continent").Type)
	require.Same(t, country, s.Types["Continent"].Field("countries").Type)
	require.Equal(t, "A continent.", s.Types["Continent"].Description)
}

func TestLoadSDL_ArgumentDefaults(t *testing.T) {
	s := loadCountries(t)
	q := s.GetQueryType()

	code := q.Field("continent").Argument("code")
	require.NotNil(t, code)
	require.Equal(t, "ID!", code.Type)
	require.Nil(t, code.DefaultValue())

	require.Equal(t, 10, q.Field("countries").Argument("first").DefaultValue())

	langs := q.Field("languages")
	if diff := cmp.Diff(value.Object{{Name: "code", Value: "en"}}, langs.Argument("filter").DefaultValue()); diff != "" {
		t.Fatalf("filter default mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, value.Enum("ASC"), langs.Argument("sort").DefaultValue())
	require.Nil(t, langs.Argument("missing"))
}

func TestLoadSDL_Invalid(t *testing.T) {
	_, err := LoadSDL("bad.graphql", "type Query { a: Missing }")
	require.Error(t, err)
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "countries_render", []byte(Render(loadCountries(t))))
}

func TestRender_CustomRoots(t *testing.T) {
	post := NewType("Post", "").
		AddField(NewScalarField("title", String)).
		AddField(NewScalarListField("tags", String))
	root := NewType("RootQuery", "").
		AddField(NewObjectListField("posts", post).AddArgument(NewArgument("limit", "Int").SetDefault(2)))
	s := NewSchema("").AddType(post).AddType(root).SetQueryType("RootQuery")

	g := goldie.New(t)
	g.Assert(t, "custom_roots", []byte(Render(s)))
}

func TestType_AddFieldReplacesInPlace(t *testing.T) {
	typ := NewType("User", "").
		AddField(NewScalarField("id", ID)).
		AddField(NewScalarField("name", String)).
		AddField(NewScalarField("id", String))

	require.Equal(t, []string{"id", "name"}, fieldNames(typ))
	require.Equal(t, String, typ.Field("id").Scalar)
	require.Equal(t, 1, typ.FieldIndex("name"))
	require.Equal(t, -1, typ.FieldIndex("email"))
	require.Nil(t, typ.Field("email"))
}

func TestArgument_DefaultFunc(t *testing.T) {
	n := 0
	a := NewArgument("page", "Int").SetDefaultFunc(func() any { n++; return n })
	require.Equal(t, 1, a.DefaultValue())
	require.Equal(t, 2, a.DefaultValue())
	require.Nil(t, NewArgument("x", "Int").DefaultValue())
}

func TestKind(t *testing.T) {
	require.True(t, KindObjectList.IsObject())
	require.True(t, KindObjectList.IsList())
	require.False(t, KindScalar.IsObject())
	require.True(t, KindScalarList.IsList())
	require.Equal(t, "ObjectList", KindObjectList.String())
	require.True(t, IsBuiltinScalar(Boolean))
	require.False(t, IsBuiltinScalar("Timestamp"))
}
