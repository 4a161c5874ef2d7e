package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ima-dev/ima/pkg/dom"
)

// sameElement compares elements by identity.
var sameElement = cmp.Comparer(func(x, y *dom.Element) bool { return x == y })

func TestSplit(t *testing.T) {
	node := dom.NewElement("b")

	tests := []struct {
		name      string
		args      []any
		wantProps Props
		wantKids  []any
	}{
		{"empty", nil, Props{}, nil},
		{"string first", []any{"a", "b"}, Props{}, []any{"a", "b"}},
		{"number first", []any{3, Props{"id": "x"}}, Props{}, []any{3, Props{"id": "x"}}},
		{"float first", []any{1.5}, Props{}, []any{1.5}},
		{"node first", []any{node, "x"}, Props{}, []any{node, "x"}},
		{"props first", []any{Props{"id": "x"}, "c"}, Props{"id": "x"}, []any{"c"}},
		{"map first", []any{map[string]any{"id": "x"}}, Props{"id": "x"}, []any{}},
		{"is removed", []any{Props{"is": "x-a", "id": "x"}}, Props{"id": "x"}, []any{}},
		{"bool first", []any{true, "x"}, Props{}, []any{true, "x"}},
		{"slice first", []any{[]any{"a"}}, Props{}, []any{[]any{"a"}}},
		{"nil first", []any{nil, "x"}, Props{}, []any{nil, "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props, kids := Split(tt.args)
			if diff := cmp.Diff(tt.wantProps, props); diff != "" {
				t.Errorf("props (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantKids, kids, sameElement); diff != "" {
				t.Errorf("children (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplit_FunctionFirst(t *testing.T) {
	fn := func() string { return "x" }
	props, kids := Split([]any{fn, "y"})
	if len(props) != 0 || len(kids) != 2 {
		t.Errorf("got %d props and %d children", len(props), len(kids))
	}
}

func TestSplit_DoesNotMutateBag(t *testing.T) {
	bag := Props{"is": "x-a", "id": "x"}
	Split([]any{bag})
	if _, ok := bag["is"]; !ok {
		t.Error("caller's bag was modified")
	}
}

func TestFlatten(t *testing.T) {
	a, b := dom.NewElement("a"), dom.NewElement("b")
	var nilEl *dom.Element
	got := Flatten([]any{
		"x",
		[]any{1, []any{"y", nil}},
		[]*dom.Element{a, nilEl},
		[]dom.Node{b},
		[]string{"p", "q"},
		[]byte("raw"),
		nil,
	})
	want := []any{"x", 1, "y", a, b, "p", "q", []byte("raw")}
	if diff := cmp.Diff(want, got, sameElement); diff != "" {
		t.Errorf("Flatten (-want +got):\n%s", diff)
	}
}

type stringer struct{ s string }

func (s *stringer) String() string { return s.s }

func TestString(t *testing.T) {
	var nilStringer *stringer
	var nilEl *dom.Element
	txt := dom.NewElement("p")
	txt.AppendChild(dom.NewText("inner"))

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "s", "s"},
		{"bytes", []byte("b"), "b"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint8", uint8(200), "200"},
		{"whole float", 3.0, "3"},
		{"fraction", 0.1, "0.1"},
		{"float32", float32(0.5), "0.5"},
		{"large", 1e21, "1e+21"},
		{"just below exponent", 1e20, "100000000000000000000"},
		{"small", 1e-7, "1e-7"},
		{"small fixed", 0.000001, "0.000001"},
		{"negative zero", math.Copysign(0, -1), "0"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"neg inf", math.Inf(-1), "-Infinity"},
		{"node", txt, "inner"},
		{"nil node", nilEl, ""},
		{"stringer", &stringer{"st"}, "st"},
		{"nil stringer", nilStringer, ""},
		{"error", errors.New("bad"), "bad"},
		{"named string", label("l"), "l"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in); got != tt.want {
				t.Errorf("String(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAttrValue(t *testing.T) {
	tests := []struct {
		in      any
		value   string
		present bool
	}{
		{true, "", true},
		{false, "", false},
		{nil, "", false},
		{"x", "x", true},
		{"", "", true},
		{0, "0", true},
		{2.5, "2.5", true},
		{flag(true), "", true},
		{flag(false), "", false},
	}
	for _, tt := range tests {
		value, present := AttrValue(tt.in)
		if value != tt.value || present != tt.present {
			t.Errorf("AttrValue(%v) = (%q, %v), want (%q, %v)", tt.in, value, present, tt.value, tt.present)
		}
	}
}

type (
	counter int
	label   string
	flag    bool
)

func TestToEvaluator(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		want any
		ok   bool
	}{
		{"func string", func() string { return "a" }, "a", true},
		{"func int", func() int { return 1 }, 1, true},
		{"func any", func() any { return 2.5 }, 2.5, true},
		{"evaluator", Evaluator(func() any { return "e" }), "e", true},
		{"named result via reflection", func() counter { return 3 }, counter(3), true},
		{"takes args", func(int) string { return "" }, nil, false},
		{"two results", func() (int, error) { return 0, nil }, nil, false},
		{"no result", func() {}, nil, false},
		{"not a func", "x", nil, false},
		{"nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, ok := ToEvaluator(tt.fn)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && eval() != tt.want {
				t.Errorf("eval() = %v, want %v", eval(), tt.want)
			}
		})
	}
}

func TestTextual(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		want bool
	}{
		{"string", func() string { return "" }, true},
		{"int", func() int { return 0 }, true},
		{"float", func() float64 { return 0 }, true},
		{"bool", func() bool { return false }, true},
		{"named int", func() counter { return 0 }, true},
		{"any", func() any { return "" }, false},
		{"element", func() *dom.Element { return nil }, false},
		{"node", func() dom.Node { return nil }, false},
		{"not a func", "s", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Textual(tt.fn); got != tt.want {
				t.Errorf("Textual = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToListener(t *testing.T) {
	calls := 0
	var got *dom.Event
	ev := dom.NewEvent("click")

	tests := []struct {
		name string
		fn   any
		ok   bool
	}{
		{"no args", func() { calls++ }, true},
		{"event arg", func(e *dom.Event) { got = e; calls++ }, true},
		{"listener", dom.Listener(func(*dom.Event) { calls++ }), true},
		{"result discarded", func() int { calls++; return 1 }, true},
		{"wrong arg", func(string) {}, false},
		{"not a func", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			l, ok := ToListener(tt.fn)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			l(ev)
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
	if got != ev {
		t.Error("event argument not forwarded")
	}
}
