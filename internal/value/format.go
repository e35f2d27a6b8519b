// Package value renders Go values as GraphQL literal text.
package value

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Enum is rendered bare, as a GraphQL enum literal.
type Enum string

// Literal is implemented by types that render their own GraphQL literal.
type Literal interface {
	GraphQLLiteral() string
}

// Pair is one named entry of an argument list or input object.
type Pair struct {
	Name  string
	Value any
}

// Object is an ordered input object. Entries render in slice order.
type Object []Pair

// Get returns the value stored under name.
func (o Object) Get(name string) (any, bool) {
	for _, p := range o {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// ObjectFromMap converts m into an Object with keys in lexical order.
func ObjectFromMap(m map[string]any) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{Name: k, Value: m[k]})
	}
	return out
}

// Absent reports whether v counts as "not supplied": nil or a nil pointer,
// map, slice or interface.
func Absent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// FormatArguments renders "name: value, " for every present entry of args.
// Absent entries are omitted entirely; the trailing separator is kept.
func FormatArguments(args Object) string {
	var b strings.Builder
	for _, p := range args {
		if Absent(p.Value) {
			continue
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(Format(p.Value))
		b.WriteString(", ")
	}
	return b.String()
}

// Format renders v as GraphQL literal text. Strings are quoted without
// escaping; callers must not pass strings containing '"'.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case Literal:
		return t.GraphQLLiteral()
	case Enum:
		return string(t)
	case string:
		return `"` + t + `"`
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case Object:
		return "{" + FormatArguments(t) + "}"
	case map[string]any:
		return "{" + FormatArguments(ObjectFromMap(t)) + "}"
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Format(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return formatReflect(reflect.ValueOf(v))
}

func formatReflect(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		if s, ok := text(rv); ok {
			return `"` + s + `"`
		}
		return Format(rv.Elem().Interface())
	case reflect.String:
		return `"` + rv.String() + `"`
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return "null"
		}
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = Format(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return "{" + FormatArguments(ObjectFromMap(m)) + "}"
	case reflect.Struct:
		if s, ok := text(rv); ok {
			return `"` + s + `"`
		}
		return "{" + FormatArguments(structObject(rv)) + "}"
	}
	return fmt.Sprint(rv.Interface())
}

// text returns the text form of struct values such as time.Time or *url.URL,
// preferring encoding.TextMarshaler over fmt.Stringer. Methods declared on
// the pointer receiver are found for struct values too.
func text(rv reflect.Value) (string, bool) {
	candidates := []any{rv.Interface()}
	if rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		candidates = append(candidates, ptr.Interface())
	}
	for _, c := range candidates {
		if m, ok := c.(encoding.TextMarshaler); ok {
			if b, err := m.MarshalText(); err == nil {
				return string(b), true
			}
		}
	}
	for _, c := range candidates {
		if s, ok := c.(fmt.Stringer); ok {
			return s.String(), true
		}
	}
	return "", false
}

// structObject collects exported fields in declaration order. The graphql tag
// renames a field; "-" skips it.
func structObject(rv reflect.Value) Object {
	rt := rv.Type()
	out := make(Object, 0, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("graphql"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		} else {
			name = strings.ToLower(name[:1]) + name[1:]
		}
		out = append(out, Pair{Name: name, Value: rv.Field(i).Interface()})
	}
	return out
}
