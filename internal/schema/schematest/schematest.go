// Package schematest provides a small user/country schema shared by tests.
package schematest

import (
	_ "embed"

	"github.com/hanpama/graphkit/internal/schema"
)

//go:embed users.graphql
var SDL string

// Users loads the fixture schema. It panics on error since the SDL is static.
func Users() *schema.Schema {
	s, err := schema.LoadSDL("users.graphql", SDL)
	if err != nil {
		panic(err)
	}
	return s
}
