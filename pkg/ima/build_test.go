package ima_test

import (
	"testing"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/ima"
	"github.com/ima-dev/ima/pkg/imatest"
	"github.com/ima-dev/ima/pkg/render"
)

func TestEl_ArgumentShapes(t *testing.T) {
	h := imatest.New(t)
	e := h.Engine

	tests := []struct {
		name string
		el   *dom.Element
		want string
	}{
		{"no args", e.El("div"), `<div></div>`},
		{"string child", e.El("div", "hello"), `<div>hello</div>`},
		{"number child", e.El("div", 5, " items"), `<div>5 items</div>`},
		{"float child", e.El("div", 0.5), `<div>0.5</div>`},
		{"node first", e.El("div", e.El("b", "x"), "y"), `<div><b>x</b>y</div>`},
		{"props then children", e.El("div", ima.Props{"id": "a"}, "x"), `<div id="a">x</div>`},
		{"plain map props", e.El("div", map[string]any{"title": "t"}), `<div title="t"></div>`},
		{"is stripped", e.El("div", ima.Props{"is": "x-foo", "title": "t"}), `<div title="t"></div>`},
		{"slice first", e.El("ul", []any{e.El("li", "a"), e.El("li", "b")}), `<ul><li>a</li><li>b</li></ul>`},
		{"nil children dropped", e.El("p", ima.Props{}, nil, "x", nil), `<p>x</p>`},
		{"sorted props", e.El("a", ima.Props{"title": "t", "href": "/", "class": "c"}), `<a class="c" href="/" title="t"></a>`},
		{"void element", e.El("input", ima.Props{"type": "text"}), `<input type="text">`},
		{"text escaped", e.El("p", "<b> & co"), `<p>&lt;b&gt; &amp; co</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render.OuterHTML(tt.el); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEl_StaticAttributePolicy(t *testing.T) {
	h := imatest.New(t)
	el := h.Engine.El("button", ima.Props{
		"disabled": true,
		"hidden":   false,
		"title":    nil,
		"tabindex": 3,
	})

	imatest.ExpectAttribute(t, el, "disabled", "")
	imatest.ExpectAttribute(t, el, "tabindex", "3")
	imatest.ExpectNoAttribute(t, el, "hidden")
	imatest.ExpectNoAttribute(t, el, "title")
	if n := h.Engine.Size(); n != 0 {
		t.Errorf("static props registered %d bindings", n)
	}
}

func TestEl_Listeners(t *testing.T) {
	h := imatest.New(t)
	clicks := 0
	var seen *dom.Event
	h.Mount(h.Engine.El("button", ima.Props{
		"id":      "inc",
		"onClick": func() { clicks++ },
		"onInput": func(ev *dom.Event) { seen = ev },
	}))

	btn := h.ByID("inc")
	imatest.ExpectNoAttribute(t, btn, "onClick")
	if btn.ListenerCount("click") != 1 {
		t.Fatalf("expected one click listener, got %d", btn.ListenerCount("click"))
	}

	h.Click("inc")
	h.Click("inc")
	if clicks != 2 {
		t.Errorf("clicks = %d, want 2", clicks)
	}

	btn.Dispatch(dom.NewEvent("input"))
	if seen == nil || seen.Target != btn {
		t.Errorf("input listener did not receive the event")
	}
	if h.Engine.Size() != 0 {
		t.Errorf("listeners must not register bindings")
	}
}

func TestEl_OnPrefixWithoutFunction(t *testing.T) {
	h := imatest.New(t)
	el := h.Engine.El("div", ima.Props{"one": "1"})
	imatest.ExpectAttribute(t, el, "one", "1")
}

func TestEl_TextSpecialization(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		h := imatest.New(t)
		el := h.Engine.El("span", func() int { return 7 })
		if got := render.OuterHTML(el); got != `<span>7</span>` {
			t.Errorf("got %s", got)
		}
		if h.Engine.Len(ima.KindText) != 1 || h.Engine.Len(ima.KindNode) != 0 {
			t.Errorf("expected one text binding, got texts=%d nodes=%d",
				h.Engine.Len(ima.KindText), h.Engine.Len(ima.KindNode))
		}
	})

	t.Run("disabled", func(t *testing.T) {
		h := imatest.New(t, ima.WithTextBindings(false))
		el := h.Engine.El("span", func() int { return 7 })
		if got := render.OuterHTML(el); got != `<span>7<!--reactive-0--></span>` {
			t.Errorf("got %s", got)
		}
		if h.Engine.Len(ima.KindNode) != 1 {
			t.Errorf("expected a node binding")
		}
	})

	t.Run("dynamic result type", func(t *testing.T) {
		h := imatest.New(t)
		h.Engine.El("span", func() any { return "x" })
		if h.Engine.Len(ima.KindNode) != 1 {
			t.Errorf("func() any must become a node binding")
		}
	})

	t.Run("function among siblings", func(t *testing.T) {
		h := imatest.New(t)
		el := h.Engine.El("p", "n=", func() int { return 1 })
		if got := render.OuterHTML(el); got != `<p>n=1<!--reactive-0--></p>` {
			t.Errorf("got %s", got)
		}
	})
}

func TestTags(t *testing.T) {
	h := imatest.New(t)
	tags := h.Engine.Tags()

	div := tags["div"](ima.Props{"id": "x"}, "hi")
	if got := render.OuterHTML(div); got != `<div id="x">hi</div>` {
		t.Errorf("got %s", got)
	}

	custom := tags.Get(h.Engine, "my-widget")()
	if custom.TagName() != "my-widget" {
		t.Errorf("TagName = %q", custom.TagName())
	}

	circle := h.Engine.SVG()["circle"](ima.Props{"r": 4})
	if circle.Namespace() != render.SVGNamespace {
		t.Errorf("Namespace = %q", circle.Namespace())
	}
	if got := render.OuterHTML(circle); got != `<circle r="4"></circle>` {
		t.Errorf("got %s", got)
	}
}

func TestBuild_ExplicitArguments(t *testing.T) {
	h := imatest.New(t)
	el := h.Engine.Build("div", ima.Props{"id": "b"}, []any{"a", 1})
	if got := render.OuterHTML(el); got != `<div id="b">a1</div>` {
		t.Errorf("got %s", got)
	}
}
