package shape

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/ima-dev/ima/pkg/dom"
)

// String converts a value to its text form. Numbers are formatted the way a
// browser formats them: integers in base 10, floats in shortest form,
// exponent notation outside [1e-6, 1e21).
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case dom.Node:
		if IsNil(x) {
			return ""
		}
		return x.TextContent()
	case fmt.Stringer:
		if IsNil(x) {
			return ""
		}
		return x.String()
	case error:
		if IsNil(x) {
			return ""
		}
		return x.Error()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return String(rv.Bool())
	}
	if IsNil(v) {
		return ""
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	s := strconv.FormatFloat(f, 'e', -1, bits)
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}

// AttrValue applies the attribute policy shared by initial assignment and
// binding updates: true yields a present, empty attribute; false and nil
// yield an absent attribute; anything else is present with its String form.
func AttrValue(v any) (value string, present bool) {
	if IsNil(v) {
		return "", false
	}
	if IsBool(v) {
		return "", reflect.ValueOf(v).Bool()
	}
	return String(v), true
}

// Evaluator is a zero-argument read of external state.
type Evaluator func() any

// ToEvaluator adapts a function value to an Evaluator. Any function taking
// no arguments and returning exactly one value qualifies.
func ToEvaluator(v any) (Evaluator, bool) {
	switch fn := v.(type) {
	case nil:
		return nil, false
	case Evaluator:
		return fn, fn != nil
	case func() any:
		return fn, fn != nil
	case func() string:
		return func() any { return fn() }, fn != nil
	case func() int:
		return func() any { return fn() }, fn != nil
	case func() int64:
		return func() any { return fn() }, fn != nil
	case func() float64:
		return func() any { return fn() }, fn != nil
	case func() bool:
		return func() any { return fn() }, fn != nil
	case func() dom.Node:
		return func() any { return fn() }, fn != nil
	case func() *dom.Element:
		return func() any { return fn() }, fn != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}
	t := rv.Type()
	if t.NumIn() != 0 || t.NumOut() != 1 || t.IsVariadic() {
		return nil, false
	}
	return func() any { return rv.Call(nil)[0].Interface() }, true
}

// Textual reports whether fn is a function whose static result type is a
// primitive (string, bool or numeric) and therefore can never produce a node.
func Textual(fn any) bool {
	if !IsFunc(fn) {
		return false
	}
	t := reflect.TypeOf(fn)
	if t.NumIn() != 0 || t.NumOut() != 1 {
		return false
	}
	switch t.Out(0).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

var eventType = reflect.TypeOf((*dom.Event)(nil))

// ToListener adapts a function value to a dom.Listener. Functions taking no
// arguments, or a single argument that accepts a *dom.Event, qualify; their
// results are discarded.
func ToListener(v any) (dom.Listener, bool) {
	switch fn := v.(type) {
	case nil:
		return nil, false
	case dom.Listener:
		return fn, fn != nil
	case func(*dom.Event):
		return fn, fn != nil
	case func():
		return func(*dom.Event) { fn() }, fn != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}
	t := rv.Type()
	if t.IsVariadic() {
		return nil, false
	}
	switch {
	case t.NumIn() == 0:
		return func(*dom.Event) { rv.Call(nil) }, true
	case t.NumIn() == 1 && eventType.AssignableTo(t.In(0)):
		return func(ev *dom.Event) { rv.Call([]reflect.Value{reflect.ValueOf(ev)}) }, true
	}
	return nil, false
}
