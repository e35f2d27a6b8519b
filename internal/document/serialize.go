// Package document renders selection trees as GraphQL document text.
//
// The output is compact and deterministic:
//
//	query {user(id: "1", ){ id name } version}
//
// Argument lists keep their trailing ", " separator and absent arguments are
// left out entirely. String values are quoted without escaping.
package document

import (
	"strings"

	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/selection"
	"github.com/hanpama/graphkit/internal/value"
)

// Serialize renders ops as one document of the given kind. Operations are
// separated by a single space.
func Serialize(ops []selection.Operation, kind language.Operation) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteString(" {")
	for i, op := range ops {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeSelection(&b, op.Name, op.Arguments, op.Root)
	}
	b.WriteString("}")
	return b.String()
}

// Selection renders a single node the way it appears inside a document.
func Selection(n *selection.Node) string {
	var b strings.Builder
	writeSelection(&b, n.Name(), n.Arguments(), n)
	return b.String()
}

func writeSelection(b *strings.Builder, name string, args value.Object, n *selection.Node) {
	b.WriteString(name)
	rendered := value.FormatArguments(args)
	if rendered != "" {
		b.WriteByte('(')
		b.WriteString(rendered)
		b.WriteByte(')')
	}
	if n == nil || n.IsLeaf() {
		return
	}
	if rendered == "" {
		b.WriteByte(' ')
	}
	b.WriteString("{ ")
	for i, c := range n.Children() {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeSelection(b, c.Name(), c.Arguments(), c)
	}
	b.WriteString(" }")
}
