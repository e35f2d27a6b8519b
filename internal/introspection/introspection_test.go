package introspection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/graphkit/internal/executor"
	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/httptp"
	"github.com/hanpama/graphkit/internal/mockserver"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func envelope(t *testing.T, schemaJSON string) string {
	t.Helper()
	body, err := sjson.SetRaw(`{"data":{}}`, "data.__schema", schemaJSON)
	require.NoError(t, err)
	return body
}

func TestFetch_MatchesSDL(t *testing.T) {
	mock := executor.NewMockTransport(envelope(t, readFile(t, "users_schema.json")))
	got, err := Fetch(context.Background(), executor.NewExecutor("http://example.test/graphql", mock))
	require.NoError(t, err)

	want, err := schema.LoadSDL("users.graphql", readFile(t, "users.graphql"))
	require.NoError(t, err)

	if diff := cmp.Diff(schema.Render(want), schema.Render(got)); diff != "" {
		t.Fatalf("rendered schema mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "Query", got.QueryType)
	require.Equal(t, "Mutation", got.MutationType)
	require.NotContains(t, got.Types, "__Schema")
	require.Nil(t, got.GetQueryType().Field("search"))

	users := got.GetQueryType().Field("users")
	require.Equal(t, schema.KindObjectList, users.Kind)
	require.Same(t, got.Types["User"], users.Type)
	require.Equal(t, 10, users.Argument("first").DefaultValue())
	require.Equal(t, schema.KindScalarList, got.Types["User"].Field("tags").Kind)
	require.Equal(t, "ID!", got.GetQueryType().Field("user").Argument("id").Type)
	require.Nil(t, got.GetQueryType().Field("user").Argument("id").Default)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	require.Contains(t, reqs[0].Query, "fields(includeDeprecated: true, ){ name description args {")
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"server errors only", `{"data":null,"errors":[{"message":"introspection disabled"}]}`},
		{"no query type", `{"data":{"__schema":{"types":[]}}}`},
		{"unknown field type", envelope(t, `{"queryType":{"name":"Query"},"types":[
			{"kind":"OBJECT","name":"Query","fields":[{"name":"x","args":[],"type":{"kind":"OBJECT","name":"Missing"}}]}]}`)},
		{"bad default", envelope(t, `{"queryType":{"name":"Query"},"types":[
			{"kind":"SCALAR","name":"Int"},
			{"kind":"OBJECT","name":"Query","fields":[{"name":"x","args":[
				{"name":"n","type":{"kind":"SCALAR","name":"Int"},"defaultValue":"$v"}],
				"type":{"kind":"SCALAR","name":"Int"}}]}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fetch(context.Background(), executor.NewExecutor("http://example.test", executor.NewMockTransport(tt.body)))
			require.Error(t, err)
		})
	}
}

func TestFetch_MalformedResponse(t *testing.T) {
	body := envelope(t, `{"queryType":{"name":"Query"},"types":[{"kind":"OBJECT","name":7}]}`)
	_, err := Fetch(context.Background(), executor.NewExecutor("http://example.test", executor.NewMockTransport(body)))
	require.ErrorIs(t, err, gqlerr.ErrMalformedResponse)
}

func TestFetch_OverHTTP(t *testing.T) {
	h, srv := mockserver.Start(mockserver.WithSDL(readFile(t, "users.graphql")))
	defer srv.Close()
	h.RespondJSON("__schema", readFile(t, "users_schema.json"))

	tp := httptp.New()
	defer tp.Close()
	got, err := Fetch(context.Background(), executor.NewExecutor(srv.URL, tp))
	require.NoError(t, err)
	require.Len(t, got.Types, 3)

	// The document passed server-side validation.
	received := h.Received()
	require.Len(t, received, 1)
	require.Equal(t, []string{"__schema"}, received[0].Fields)
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  typeRef
		want string
	}{
		{typeRef{kinds: []string{"SCALAR"}, name: "ID"}, "ID"},
		{typeRef{kinds: []string{"NON_NULL", "SCALAR"}, name: "ID"}, "ID!"},
		{typeRef{kinds: []string{"NON_NULL", "LIST", "NON_NULL", "OBJECT"}, name: "User"}, "[User!]!"},
		{typeRef{kinds: []string{"LIST", "LIST", "SCALAR"}, name: "Int"}, "[[Int]]"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.ref.String())
	}
	require.True(t, tests[2].ref.isList())
	require.False(t, tests[1].ref.isList())
}
