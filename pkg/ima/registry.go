package ima

import (
	"fmt"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/render"
	"github.com/ima-dev/ima/pkg/shape"
)

// Kind is the binding kind.
type Kind uint8

const (
	KindAttribute Kind = iota
	KindText
	KindNode
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindText:
		return "text"
	case KindNode:
		return "node"
	default:
		return "unknown"
	}
}

// Handle identifies a binding. IDs are dense per kind, start at 0 and are
// never reused. Gen is checked on lookup so that a future removal can
// invalidate stale handles.
type Handle struct {
	Kind Kind
	ID   uint32
	Gen  uint32
}

// String returns the string representation of the Handle.
func (h Handle) String() string {
	return fmt.Sprintf("%s#%d.%d", h.Kind, h.ID, h.Gen)
}

// BindingInfo describes a registered binding.
type BindingInfo struct {
	Handle Handle

	// Owner is the element for attribute and text bindings, and the mounted
	// node for node bindings.
	Owner dom.Node

	// Anchor is the marker that follows a node binding's mount. It is nil for
	// attribute and text bindings and for component bindings.
	Anchor *dom.Comment

	// Name is the attribute name of an attribute binding.
	Name string

	// Previous is the cached value: the last evaluator result for attribute
	// and text bindings, the serialized mount for node bindings.
	Previous any

	Failed    bool
	Connected bool
}

// The registry is a structure of arrays per kind. Every slice of a table has
// the same length and is indexed by binding id. Entries are only appended.

type attrTable struct {
	owners []*dom.Element
	names  []string
	evals  []shape.Evaluator
	prev   []any
	gens   []uint32
	failed []bool
}

type textTable struct {
	owners []*dom.Element
	evals  []shape.Evaluator
	prev   []any
	gens   []uint32
	failed []bool
}

type nodeTable struct {
	// anchors[i] is nil for component bindings, which track their mount
	// directly.
	anchors []*dom.Comment
	mounted []dom.Node
	evals   []shape.Evaluator
	prev    []string
	gens    []uint32
	failed  []bool
}

// Len returns the number of bindings of the given kind.
func (e *Engine) Len(kind Kind) int {
	switch kind {
	case KindAttribute:
		return len(e.attrs.evals)
	case KindText:
		return len(e.texts.evals)
	case KindNode:
		return len(e.nodes.evals)
	}
	return 0
}

// Size returns the total number of bindings.
func (e *Engine) Size() int {
	return len(e.attrs.evals) + len(e.texts.evals) + len(e.nodes.evals)
}

// Lookup returns the binding identified by h.
func (e *Engine) Lookup(h Handle) (BindingInfo, bool) {
	i := int(h.ID)
	if i >= e.Len(h.Kind) {
		return BindingInfo{}, false
	}
	info := BindingInfo{Handle: h}
	switch h.Kind {
	case KindAttribute:
		if e.attrs.gens[i] != h.Gen {
			return BindingInfo{}, false
		}
		info.Owner = e.attrs.owners[i]
		info.Name = e.attrs.names[i]
		info.Previous = e.attrs.prev[i]
		info.Failed = e.attrs.failed[i]
	case KindText:
		if e.texts.gens[i] != h.Gen {
			return BindingInfo{}, false
		}
		info.Owner = e.texts.owners[i]
		info.Previous = e.texts.prev[i]
		info.Failed = e.texts.failed[i]
	case KindNode:
		if e.nodes.gens[i] != h.Gen {
			return BindingInfo{}, false
		}
		info.Owner = e.nodes.mounted[i]
		info.Anchor = e.nodes.anchors[i]
		info.Previous = e.nodes.prev[i]
		info.Failed = e.nodes.failed[i]
	}
	if info.Anchor != nil {
		info.Connected = info.Anchor.IsConnected()
	} else if info.Owner != nil {
		info.Connected = info.Owner.IsConnected()
	}
	return info, true
}

// Handles returns the handles of every binding of the given kind, in id
// order.
func (e *Engine) Handles(kind Kind) []Handle {
	var gens []uint32
	switch kind {
	case KindAttribute:
		gens = e.attrs.gens
	case KindText:
		gens = e.texts.gens
	case KindNode:
		gens = e.nodes.gens
	}
	out := make([]Handle, len(gens))
	for i, g := range gens {
		out[i] = Handle{Kind: kind, ID: uint32(i), Gen: g}
	}
	return out
}

// bindAttr registers an attribute binding and applies its initial value.
func (e *Engine) bindAttr(el *dom.Element, name string, fn shape.Evaluator) Handle {
	v := fn()
	setAttr(el, name, v)

	t := &e.attrs
	id := len(t.evals)
	t.owners = append(t.owners, el)
	t.names = append(t.names, name)
	t.evals = append(t.evals, fn)
	t.prev = append(t.prev, v)
	t.gens = append(t.gens, 0)
	t.failed = append(t.failed, false)

	e.arm()
	return Handle{Kind: KindAttribute, ID: uint32(id)}
}

// bindText registers a text binding and sets the element's initial text.
func (e *Engine) bindText(el *dom.Element, fn shape.Evaluator) Handle {
	v := fn()
	el.SetTextContent(shape.String(v))

	t := &e.texts
	id := len(t.evals)
	t.owners = append(t.owners, el)
	t.evals = append(t.evals, fn)
	t.prev = append(t.prev, v)
	t.gens = append(t.gens, 0)
	t.failed = append(t.failed, false)

	e.arm()
	return Handle{Kind: KindText, ID: uint32(id)}
}

// bindNode registers a node binding under parent: the initial mount is
// appended, followed by the anchor.
func (e *Engine) bindNode(parent *dom.Element, fn shape.Evaluator) Handle {
	t := &e.nodes
	id := len(t.evals)

	mount, markup := toNode(fn())
	anchor := dom.NewComment(fmt.Sprintf("reactive-%d", id))
	parent.AppendChild(mount)
	parent.AppendChild(anchor)

	e.appendNode(anchor, mount, markup, fn)
	e.arm()
	return Handle{Kind: KindNode, ID: uint32(id)}
}

// bindComponent registers a node binding without an anchor. The mount itself
// is tracked and replaced in place.
func (e *Engine) bindComponent(mount *dom.Element, fn shape.Evaluator) Handle {
	id := len(e.nodes.evals)
	e.appendNode(nil, mount, render.OuterHTML(mount), fn)
	e.arm()
	return Handle{Kind: KindNode, ID: uint32(id)}
}

func (e *Engine) appendNode(anchor *dom.Comment, mount dom.Node, markup string, fn shape.Evaluator) {
	t := &e.nodes
	t.anchors = append(t.anchors, anchor)
	t.mounted = append(t.mounted, mount)
	t.evals = append(t.evals, fn)
	t.prev = append(t.prev, markup)
	t.gens = append(t.gens, 0)
	t.failed = append(t.failed, false)
}

// toNode coerces an evaluator result to a mountable node and its cached
// serialized form.
func toNode(v any) (dom.Node, string) {
	if n, ok := v.(dom.Node); ok && !shape.IsNil(n) {
		if t, ok := n.(*dom.Text); ok {
			return t, t.Data()
		}
		return n, render.OuterHTML(n)
	}
	s := shape.String(v)
	return dom.NewText(s), s
}

// setAttr applies the attribute policy.
func setAttr(el *dom.Element, name string, v any) {
	if s, present := shape.AttrValue(v); present {
		el.SetAttribute(name, s)
	} else {
		el.RemoveAttribute(name)
	}
}
