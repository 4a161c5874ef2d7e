package dom

import "strings"

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is an HTML (or namespaced) element.
type Element struct {
	node
	tag       string
	namespace string
	attrs     []Attr
	children  []Node
	listeners map[string][]Listener

	// doc is set only on a document's root element.
	doc *Document
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return NewElementNS("", tag)
}

// NewElementNS creates a detached element in the given namespace.
func NewElementNS(namespace, tag string) *Element {
	el := &Element{tag: tag, namespace: namespace}
	el.self = el
	return el
}

// NodeType implements Node.
func (e *Element) NodeType() NodeType { return ElementNode }

// TagName returns the tag name as given at creation.
func (e *Element) TagName() string { return e.tag }

// Namespace returns the namespace URI, empty for HTML elements.
func (e *Element) Namespace() string { return e.namespace }

// Attributes returns a copy of the attributes in insertion order.
func (e *Element) Attributes() []Attr {
	out := make([]Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, keeping its position if it already exists.
func (e *Element) SetAttribute(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			if e.attrs[i].Value == value {
				return
			}
			e.attrs[i].Value = value
			e.notify(Mutation{Kind: MutationAttribute, Target: e, Name: name})
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
	e.notify(Mutation{Kind: MutationAttribute, Target: e, Name: name})
}

// RemoveAttribute removes an attribute if present.
func (e *Element) RemoveAttribute(name string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			e.notify(Mutation{Kind: MutationAttribute, Target: e, Name: name})
			return
		}
	}
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.GetAttribute("id")
	return v
}

// ChildNodes returns a copy of the child list.
func (e *Element) ChildNodes() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// Children returns the element children only.
func (e *Element) Children() []*Element {
	var out []*Element
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// FirstChild returns the first child node.
func (e *Element) FirstChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// LastChild returns the last child node.
func (e *Element) LastChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[len(e.children)-1]
}

// AppendChild appends child, moving it from its current parent if needed.
func (e *Element) AppendChild(child Node) {
	if child == nil || e.contains(child) {
		return
	}
	child.Remove()
	e.children = append(e.children, child)
	child.base().parent = e
	e.notify(Mutation{Kind: MutationChildList, Target: e})
}

// InsertBefore inserts child before ref. A nil ref appends.
func (e *Element) InsertBefore(child, ref Node) {
	if ref == nil {
		e.AppendChild(child)
		return
	}
	if child == nil || child == ref || e.contains(child) {
		return
	}
	child.Remove()
	i := e.indexOf(ref)
	if i < 0 {
		e.children = append(e.children, child)
	} else {
		e.children = append(e.children, nil)
		copy(e.children[i+1:], e.children[i:])
		e.children[i] = child
	}
	child.base().parent = e
	e.notify(Mutation{Kind: MutationChildList, Target: e})
}

// TextContent implements Node.
func (e *Element) TextContent() string { return textOf(e.children) }

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(text string) {
	for _, c := range e.children {
		c.base().parent = nil
	}
	e.children = e.children[:0]
	if text != "" {
		t := NewText(text)
		t.parent = e
		e.children = append(e.children, t)
	}
	e.notify(Mutation{Kind: MutationText, Target: e})
}

// QuerySelectorID finds the first descendant (or the element itself) whose
// id attribute equals id.
func (e *Element) QuerySelectorID(id string) *Element {
	if e.ID() == id {
		return e
	}
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			if found := el.QuerySelectorID(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// GetElementsByTagName returns descendants with the given tag name.
func (e *Element) GetElementsByTagName(tag string) []*Element {
	var out []*Element
	for _, c := range e.children {
		if el, ok := c.(*Element); ok {
			if strings.EqualFold(el.tag, tag) {
				out = append(out, el)
			}
			out = append(out, el.GetElementsByTagName(tag)...)
		}
	}
	return out
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

// contains reports whether n is e or an ancestor of e. Appending such a node
// would create a cycle.
func (e *Element) contains(n Node) bool {
	el, ok := n.(*Element)
	if !ok {
		return false
	}
	for p := e; p != nil; p = p.parent {
		if p == el {
			return true
		}
	}
	return false
}

func (e *Element) notify(m Mutation) {
	if doc := e.document(); doc != nil {
		doc.record(m)
	}
}
