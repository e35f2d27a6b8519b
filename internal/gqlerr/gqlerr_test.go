package gqlerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathString(t *testing.T) {
	cases := []struct {
		path Path
		want string
	}{
		{nil, ""},
		{Path{"user"}, "user"},
		{Path{"user", "posts", 1, "title"}, "user.posts[1].title"},
		{Path{"continents", 0}, "continents[0]"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.path.String())
	}
}

func TestPathAppendDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 4)
	base[0] = "root"
	a := base.Append("a")
	b := base.Append("b")
	require.Equal(t, Path{"root", "a"}, a)
	require.Equal(t, Path{"root", "b"}, b)
}

func TestErrorsIs(t *testing.T) {
	err := Errorf(SchemaViolation, Path{"user", "nope"}, "field %q is not declared on type %s", "nope", "User")
	require.ErrorIs(t, err, ErrSchemaViolation)
	require.NotErrorIs(t, err, ErrMalformedResponse)
	require.Equal(t, `schema violation at user.nope: field "nope" is not declared on type User`, err.Error())

	wrapped := fmt.Errorf("execute: %w", Wrap(RequestFailed, nil, context.Canceled))
	require.ErrorIs(t, wrapped, ErrRequestFailed)
	require.ErrorIs(t, wrapped, context.Canceled)

	var ge *Error
	require.True(t, errors.As(wrapped, &ge))
	require.Equal(t, RequestFailed, ge.Kind)
	require.Equal(t, "request failed: context canceled", ge.Error())
}
