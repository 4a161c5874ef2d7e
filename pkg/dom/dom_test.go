package dom

import (
	"testing"
)

func TestDocumentSkeleton(t *testing.T) {
	d := NewDocument()
	if d.Body().ParentElement() != d.DocumentElement() || d.Head().ParentElement() != d.DocumentElement() {
		t.Fatal("head and body must be children of html")
	}
	if !d.Body().IsConnected() {
		t.Error("body must be connected")
	}
	if d.MutationCount() != 0 {
		t.Errorf("MutationCount = %d on a fresh document", d.MutationCount())
	}
}

func TestIsConnected(t *testing.T) {
	d := NewDocument()
	div := d.CreateElement("div")
	span := d.CreateElement("span")
	div.AppendChild(span)

	if div.IsConnected() || span.IsConnected() {
		t.Fatal("detached subtree reported connected")
	}
	d.Body().AppendChild(div)
	if !span.IsConnected() {
		t.Error("span should be connected after mounting its parent")
	}
	div.Remove()
	if span.IsConnected() {
		t.Error("span should be disconnected after removing its parent")
	}
}

func TestSiblingsAndReplace(t *testing.T) {
	parent := NewElement("div")
	a, b, c := NewText("a"), NewElement("b"), NewComment("c")
	parent.AppendChild(a)
	parent.AppendChild(b)
	parent.AppendChild(c)

	if c.PreviousSibling() != b || a.NextSibling() != b {
		t.Fatal("unexpected siblings")
	}
	if a.PreviousSibling() != nil || c.NextSibling() != nil {
		t.Error("edges must have no sibling")
	}

	x := NewText("x")
	b.ReplaceWith(x)
	if c.PreviousSibling() != x || b.ParentElement() != nil {
		t.Error("ReplaceWith did not swap the node")
	}
	if got := parent.TextContent(); got != "ax" {
		t.Errorf("TextContent = %q, want ax", got)
	}
}

func TestAppendChildMovesNode(t *testing.T) {
	one, two := NewElement("div"), NewElement("div")
	child := NewElement("p")
	one.AppendChild(child)
	two.AppendChild(child)

	if len(one.ChildNodes()) != 0 || child.ParentElement() != two {
		t.Error("AppendChild must move the node")
	}
}

func TestAppendChildRejectsCycle(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("div")
	outer.AppendChild(inner)
	inner.AppendChild(outer)
	if outer.ParentElement() != nil {
		t.Error("appending an ancestor must be ignored")
	}
}

func TestInsertBefore(t *testing.T) {
	parent := NewElement("ul")
	a, c := NewElement("a"), NewElement("c")
	parent.AppendChild(a)
	parent.AppendChild(c)
	b := NewElement("b")
	parent.InsertBefore(b, c)

	var tags []string
	for _, el := range parent.Children() {
		tags = append(tags, el.TagName())
	}
	if len(tags) != 3 || tags[1] != "b" {
		t.Errorf("order = %v", tags)
	}
}

func TestAttributes(t *testing.T) {
	el := NewElement("a")
	el.SetAttribute("href", "/")
	el.SetAttribute("title", "t")
	el.SetAttribute("href", "/x")

	attrs := el.Attributes()
	if len(attrs) != 2 || attrs[0].Name != "href" || attrs[0].Value != "/x" {
		t.Errorf("attrs = %v", attrs)
	}
	el.RemoveAttribute("href")
	if el.HasAttribute("href") {
		t.Error("href not removed")
	}
}

func TestMutationsOnlyForConnectedNodes(t *testing.T) {
	d := NewDocument()
	var seen []Mutation
	cancel := d.Observe(func(m Mutation) { seen = append(seen, m) })

	el := d.CreateElement("div")
	el.SetAttribute("id", "a")
	if len(seen) != 0 {
		t.Fatalf("detached mutation observed: %v", seen)
	}

	d.Body().AppendChild(el)
	el.SetAttribute("id", "b")
	el.SetAttribute("id", "b")
	el.SetTextContent("hi")

	want := []MutationKind{MutationChildList, MutationAttribute, MutationText}
	if len(seen) != len(want) {
		t.Fatalf("observed %d mutations, want %d", len(seen), len(want))
	}
	for i, k := range want {
		if seen[i].Kind != k {
			t.Errorf("mutation %d = %v, want %v", i, seen[i].Kind, k)
		}
	}
	if d.MutationCount() != 3 {
		t.Errorf("MutationCount = %d", d.MutationCount())
	}

	cancel()
	el.SetAttribute("id", "c")
	if len(seen) != 3 {
		t.Error("observer called after cancel")
	}
}

func TestGetElementByID(t *testing.T) {
	d := NewDocument()
	wrap := d.CreateElement("section")
	btn := d.CreateElement("button")
	btn.SetAttribute("id", "go")
	wrap.AppendChild(btn)

	if d.GetElementByID("go") != nil {
		t.Error("detached element found")
	}
	d.Body().AppendChild(wrap)
	if d.GetElementByID("go") != btn {
		t.Error("element not found")
	}
	if got := d.Body().GetElementsByTagName("BUTTON"); len(got) != 1 {
		t.Errorf("GetElementsByTagName = %v", got)
	}
}

func TestDispatchBubbles(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("button")
	outer.AppendChild(inner)

	var order []string
	outer.AddEventListener("click", func(ev *Event) {
		order = append(order, "outer")
		if ev.Target != inner || ev.CurrentTarget != outer {
			t.Error("unexpected targets in outer listener")
		}
	})
	inner.AddEventListener("CLICK", func(*Event) { order = append(order, "inner") })

	if n := inner.Click(); n != 2 {
		t.Errorf("invoked %d listeners", n)
	}
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("order = %v", order)
	}
}

func TestStopPropagation(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("button")
	outer.AppendChild(inner)

	outerCalled := false
	outer.AddEventListener("click", func(*Event) { outerCalled = true })
	inner.AddEventListener("click", func(ev *Event) { ev.StopPropagation() })
	inner.Click()
	if outerCalled {
		t.Error("propagation not stopped")
	}
}

func TestSetTextContentDetachesChildren(t *testing.T) {
	el := NewElement("p")
	old := NewElement("b")
	el.AppendChild(old)
	el.SetTextContent("x")
	if old.ParentElement() != nil {
		t.Error("old child still attached")
	}
	el.SetTextContent("")
	if len(el.ChildNodes()) != 0 {
		t.Error("empty text must leave no children")
	}
}
