// Package shape infers the meaning of element builder arguments.
//
// Builders accept a loose argument list: an optional property bag followed by
// children, or children alone. Split decides which shape a call has; the
// remaining helpers classify and stringify values the same way for the live
// engine and for static rendering.
package shape

import (
	"reflect"

	"github.com/ima-dev/ima/pkg/dom"
)

// Props is a property bag: attributes, event listeners and bindings.
type Props map[string]any

// ReservedIs is stripped from every property bag and never becomes an
// attribute. It is held back for custom element support.
const ReservedIs = "is"

// Split separates a builder argument list into a property bag and children.
//
//   - no arguments: empty bag, no children
//   - first argument is a string, a number, a dom.Node or a function: every
//     argument is a child
//   - first argument is a Props or map[string]any: it is the bag, the rest
//     are children
//   - anything else: empty bag, every argument is a child
//
// The returned bag is never nil and never contains ReservedIs.
func Split(args []any) (Props, []any) {
	if len(args) == 0 {
		return Props{}, nil
	}
	first := args[0]
	switch {
	case isString(first), IsNumber(first), isNode(first), IsFunc(first):
		return Props{}, args
	}
	if bag, ok := asProps(first); ok {
		props := make(Props, len(bag))
		for k, v := range bag {
			if k == ReservedIs {
				continue
			}
			props[k] = v
		}
		return props, args[1:]
	}
	return Props{}, args
}

func asProps(v any) (map[string]any, bool) {
	switch p := v.(type) {
	case Props:
		return p, p != nil
	case map[string]any:
		return p, p != nil
	}
	return nil, false
}

// Flatten flattens arbitrarily nested slices into one ordered sequence and
// drops nil entries.
func Flatten(children []any) []any {
	out := make([]any, 0, len(children))
	return flattenInto(out, children)
}

func flattenInto(out []any, children []any) []any {
	for _, c := range children {
		out = flattenValue(out, c)
	}
	return out
}

func flattenValue(out []any, c any) []any {
	if IsNil(c) {
		return out
	}
	switch v := c.(type) {
	case []any:
		return flattenInto(out, v)
	case []dom.Node:
		for _, n := range v {
			out = flattenValue(out, n)
		}
		return out
	case []*dom.Element:
		for _, n := range v {
			out = flattenValue(out, n)
		}
		return out
	case string, []byte:
		return append(out, v)
	}
	rv := reflect.ValueOf(c)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			out = flattenValue(out, rv.Index(i).Interface())
		}
		return out
	}
	return append(out, c)
}

// IsNil reports whether v is nil or a nil pointer, func, map, slice,
// channel or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// IsFunc reports whether v is a non-nil function value.
func IsFunc(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// IsNumber reports whether v is of any integer or floating point kind.
func IsNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsBool reports whether v is of bool kind, including named bool types.
func IsBool(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Bool
}

func isString(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.String
}

func isNode(v any) bool {
	n, ok := v.(dom.Node)
	return ok && !IsNil(n)
}

// IsNode reports whether v is a non-nil dom.Node.
func IsNode(v any) bool { return isNode(v) }
