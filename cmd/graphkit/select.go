package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/selection"
	"github.com/hanpama/graphkit/internal/value"
)

// selectPath is one node of the -select tree.
type selectPath struct {
	name     string
	children []*selectPath
}

func (p *selectPath) child(name string) *selectPath {
	for _, c := range p.children {
		if c.name == name {
			return c
		}
	}
	c := &selectPath{name: name}
	p.children = append(p.children, c)
	return c
}

// parseSelect turns "id,name,address.city" into a tree, keeping first-seen
// order.
func parseSelect(list string) ([]*selectPath, error) {
	root := &selectPath{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		cur := root
		for _, seg := range strings.Split(item, ".") {
			if seg == "" {
				return nil, fmt.Errorf("invalid selection %q", item)
			}
			cur = cur.child(seg)
		}
	}
	return root.children, nil
}

// argSet holds arguments by field path relative to the root field. The root
// field itself is "".
type argSet map[string]map[string]any

// parseArgs reads "[path.]name=literal" flags.
func parseArgs(flags []string) (argSet, error) {
	out := argSet{}
	for _, f := range flags {
		key, literal, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: want name=literal", f)
		}
		path, name := "", key
		if i := strings.LastIndexByte(key, '.'); i >= 0 {
			path, name = key[:i], key[i+1:]
		}
		v, err := language.ParseValue(strings.TrimSpace(literal))
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", key, err)
		}
		if out[path] == nil {
			out[path] = map[string]any{}
		}
		out[path][name] = v
	}
	return out, nil
}

// buildSelector converts p into a Selector whose leaves print their values
// to out. Arguments addressed to paths outside the selection are rejected.
func buildSelector(root *schema.Type, p *selectPath, args argSet, out io.Writer) (selection.Selector, error) {
	used := map[string]bool{}
	sel := buildPath(root, p, p.name, "", args, used, out)
	var unused []string
	for path := range args {
		if !used[path] {
			unused = append(unused, path)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return selection.Selector{}, fmt.Errorf("arguments for unselected fields: %s", strings.Join(unused, ", "))
	}
	return sel, nil
}

func buildPath(parent *schema.Type, p *selectPath, full, key string, args argSet, used map[string]bool, out io.Writer) selection.Selector {
	used[key] = true
	var field *schema.Field
	if parent != nil {
		field = parent.Field(p.name)
	}
	fieldArgs := args[key]
	if field != nil {
		coerceArgs(field, fieldArgs)
	}

	var s selection.Selector
	if len(p.children) == 0 {
		s = selection.Leaf(p.name, selection.Raw(func(v any) { printValue(out, full, v) }))
	} else {
		var childType *schema.Type
		if field != nil {
			childType = field.Type
		}
		children := make([]selection.Selector, 0, len(p.children))
		for _, c := range p.children {
			childKey := c.name
			if key != "" {
				childKey = key + "." + c.name
			}
			children = append(children, buildPath(childType, c, full+"."+c.name, childKey, args, used, out))
		}
		s = selection.Object(p.name, children...)
	}
	if len(fieldArgs) > 0 {
		s = s.WithArgs(fieldArgs)
	}
	return s
}

// coerceArgs turns bare enum-looking literals into strings for String and ID
// arguments, so that -arg id=abc works without quoting.
func coerceArgs(field *schema.Field, args map[string]any) {
	for name, v := range args {
		e, ok := v.(value.Enum)
		if !ok {
			continue
		}
		a := field.Argument(name)
		if a == nil {
			continue
		}
		switch strings.Trim(a.Type, "[]!") {
		case schema.String, schema.ID:
			args[name] = string(e)
		}
	}
}

// printValue writes one delivered value as "path = literal".
func printValue(w io.Writer, path string, v any) {
	if s, ok := v.(string); ok {
		fmt.Fprintf(w, "%s = %q\n", path, s)
		return
	}
	fmt.Fprintf(w, "%s = %s\n", path, value.Format(v))
}
