package selection

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/schema/schematest"
	"github.com/hanpama/graphkit/internal/value"
	"github.com/stretchr/testify/require"
)

func noopString(string) {}

func childNames(n *Node) []string {
	out := make([]string, len(n.Children()))
	for i, c := range n.Children() {
		out[i] = c.Name()
	}
	return out
}

func requireViolation(t *testing.T, err error, path string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, gqlerr.ErrSchemaViolation), "got %v", err)
	var ge *gqlerr.Error
	require.True(t, errors.As(err, &ge))
	require.Equal(t, path, ge.Path.String())
}

func TestNewOperation_ChildrenInSchemaOrder(t *testing.T) {
	s := schematest.Users()
	op, err := NewOperation(s.GetQueryType(), Object("user",
		Leaf("name", Value(noopString)),
		Object("address", Leaf("city", Value(noopString))),
		Leaf("id", Value(noopString)),
	).WithArgs(map[string]any{"id": "1"}))
	require.NoError(t, err)

	require.Equal(t, "user", op.Name)
	require.Equal(t, schema.KindObject, op.Root.Kind())
	if diff := cmp.Diff([]string{"id", "name", "address"}, childNames(op.Root)); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(value.Object{{Name: "id", Value: "1"}}, op.Arguments); diff != "" {
		t.Fatalf("arguments mismatch (-want +got):\n%s", diff)
	}
	require.Same(t, s.Types["User"], op.Root.Type())
	require.True(t, op.Root.Children()[0].IsLeaf())
	require.False(t, op.Root.Children()[2].IsLeaf())
}

func TestNewOperation_DefaultsOverlay(t *testing.T) {
	s := schematest.Users()
	user := s.Types["User"]

	n, err := Root(user, Object("posts", Leaf("id", Value(noopString))))
	require.NoError(t, err)
	posts := n.Children()[0]
	require.Equal(t, value.Object{{Name: "limit", Value: 2}}, posts.Arguments())
	require.True(t, posts.HasArguments())

	n, err = Root(user, Object("posts", Leaf("id", Value(noopString))).
		WithArgs(map[string]any{"order": value.Enum("DESC"), "limit": 5}))
	require.NoError(t, err)
	require.Equal(t, value.Object{
		{Name: "limit", Value: 5},
		{Name: "order", Value: value.Enum("DESC")},
	}, n.Children()[0].Arguments())

	// an explicit nil suppresses the default
	n, err = Root(user, Object("posts", Leaf("id", Value(noopString))).
		WithArgs(map[string]any{"limit": nil}))
	require.NoError(t, err)
	require.False(t, n.Children()[0].HasArguments())

	n, err = Root(user, Leaf("id", Value(noopString)))
	require.NoError(t, err)
	require.False(t, n.Children()[0].HasArguments())
	require.Nil(t, n.Children()[0].Arguments())
}

func TestSchemaViolations(t *testing.T) {
	s := schematest.Users()
	q := s.GetQueryType()

	cases := []struct {
		name string
		sel  Selector
		path string
	}{
		{"unknown root field", Leaf("viewer", Value(noopString)), "viewer"},
		{"unknown nested field", Object("user", Leaf("email", Value(noopString))), "user.email"},
		{"unknown argument", Object("user", Leaf("id", Value(noopString))).WithArgs(map[string]any{"uuid": "x"}), "user"},
		{"scalar without callback", Object("user", Leaf("id", nil)), "user.id"},
		{"scalar with selections", Object("user", Object("id", Leaf("x", Value(noopString)))), "user.id"},
		{"object with callback", Leaf("user", Value(noopString)), "user"},
		{"object without children", Object("user"), "user"},
		{"duplicate child", Object("user", Leaf("id", Value(noopString)), Leaf("id", Value(noopString))), "user.id"},
		{"incompatible callback", Object("user", Leaf("age", Value(noopString))), "user.age"},
		{"bool callback on string", Object("user", Leaf("name", Value(func(bool) {}))), "user.name"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewOperation(q, c.sel)
			requireViolation(t, err, c.path)
		})
	}
}

func TestNewOperation_NoRootType(t *testing.T) {
	_, err := NewOperation(nil, Leaf("version", Value(noopString)))
	requireViolation(t, err, "version")
}

func TestBuild(t *testing.T) {
	s := schematest.Users()
	user := s.Types["User"]

	id, err := Build(user.Field("id"), nil, Value(noopString))
	require.NoError(t, err)
	name, err := Build(user.Field("name"), nil, Value(noopString))
	require.NoError(t, err)

	n, err := Build(s.GetQueryType().Field("user"), map[string]any{"id": "7"}, nil, name, id)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name"}, childNames(n))

	// a field from another type is not a child of User
	code, err := Build(s.Types["Country"].Field("code"), nil, Value(noopString))
	require.NoError(t, err)
	_, err = Build(s.GetQueryType().Field("user"), map[string]any{"id": "7"}, nil, code)
	requireViolation(t, err, "user.code")

	_, err = Build(nil, nil, nil)
	require.ErrorIs(t, err, gqlerr.ErrSchemaViolation)
}

func TestCallbackAccepts(t *testing.T) {
	cases := []struct {
		name   string
		cb     Callback
		scalar string
		want   bool
	}{
		{"string/String", Value(func(string) {}), schema.String, true},
		{"string/ID", Value(func(string) {}), schema.ID, true},
		{"string/enum", Value(func(string) {}), "Role", true},
		{"string/Int", Value(func(string) {}), schema.Int, false},
		{"int/Int", Value(func(int) {}), schema.Int, true},
		{"int64/Float", Value(func(int64) {}), schema.Float, false},
		{"float/Int", Value(func(float64) {}), schema.Int, true},
		{"float/Float", Value(func(float64) {}), schema.Float, true},
		{"bool/Boolean", Value(func(bool) {}), schema.Boolean, true},
		{"raw/custom", Raw(func(any) {}), "Time", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.cb.Accepts(c.scalar))
		})
	}
}

func TestCallbackBind(t *testing.T) {
	var gotInt int
	fire, err := Value(func(v int) { gotInt = v }).Bind(int64(42))
	require.NoError(t, err)
	require.Zero(t, gotInt)
	fire()
	require.Equal(t, 42, gotInt)

	var gotFloat float64
	fire, err = Value(func(v float64) { gotFloat = v }).Bind(int64(3))
	require.NoError(t, err)
	fire()
	require.Equal(t, 3.0, gotFloat)

	_, err = Value(func(string) {}).Bind(1.5)
	require.Error(t, err)
	_, err = Value(func(bool) {}).Bind("true")
	require.Error(t, err)

	var raw any
	fire, err = Raw(func(v any) { raw = v }).Bind(map[string]any{"a": 1.0})
	require.NoError(t, err)
	fire()
	require.Equal(t, map[string]any{"a": 1.0}, raw)
}
