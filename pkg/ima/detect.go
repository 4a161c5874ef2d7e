package ima

import (
	"reflect"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/render"
	"github.com/ima-dev/ima/pkg/shape"
)

// updateAttr re-evaluates attribute binding i and reports whether the
// attribute was patched.
func (e *Engine) updateAttr(i int) bool {
	t := &e.attrs
	if t.failed[i] {
		return false
	}
	el := t.owners[i]
	if !el.IsConnected() {
		return false
	}
	v, ok := e.evaluate(KindAttribute, i, t.evals[i])
	if !ok || sameValue(v, t.prev[i]) {
		return false
	}
	setAttr(el, t.names[i], v)
	t.prev[i] = v
	return true
}

// updateText re-evaluates text binding i and reports whether the text was
// replaced.
func (e *Engine) updateText(i int) bool {
	t := &e.texts
	if t.failed[i] {
		return false
	}
	el := t.owners[i]
	if !el.IsConnected() {
		return false
	}
	v, ok := e.evaluate(KindText, i, t.evals[i])
	if !ok || sameValue(v, t.prev[i]) {
		return false
	}
	el.SetTextContent(shape.String(v))
	t.prev[i] = v
	return true
}

// updateNode re-evaluates node binding i and reports whether the mount was
// replaced. The anchor itself is never replaced.
func (e *Engine) updateNode(i int) bool {
	t := &e.nodes
	if t.failed[i] {
		return false
	}
	var mount dom.Node
	if anchor := t.anchors[i]; anchor != nil {
		if !anchor.IsConnected() {
			return false
		}
		// The mount is whatever sits right before the anchor, so prior
		// replacements are always found.
		mount = anchor.PreviousSibling()
	} else {
		mount = t.mounted[i]
		if mount != nil && !mount.IsConnected() {
			return false
		}
	}
	if mount == nil {
		return false
	}
	v, ok := e.evaluate(KindNode, i, t.evals[i])
	if !ok {
		return false
	}
	next, markup, changed := nodeChange(mount, t.prev[i], v)
	if !changed {
		return false
	}
	mount.ReplaceWith(next)
	t.mounted[i] = next
	t.prev[i] = markup
	return true
}

// nodeChange decides whether v replaces mount.
//
// Two elements are compared by their full serialized markup, which costs
// O(subtree) per tick. A primitive is compared with a mounted text node's
// data. Any other pairing is a change.
func nodeChange(mount dom.Node, prevMarkup string, v any) (dom.Node, string, bool) {
	if n, ok := v.(dom.Node); ok && !shape.IsNil(n) {
		if n == mount {
			return nil, "", false
		}
		nextEl, nextIsEl := n.(*dom.Element)
		if _, mountIsEl := mount.(*dom.Element); mountIsEl && nextIsEl {
			markup := render.OuterHTML(nextEl)
			if markup == prevMarkup {
				return nil, "", false
			}
			return nextEl, markup, true
		}
		node, markup := toNode(n)
		return node, markup, true
	}
	s := shape.String(v)
	if txt, ok := mount.(*dom.Text); ok && txt.Data() == s {
		return nil, "", false
	}
	return dom.NewText(s), s, true
}

// sameValue is strict equality over evaluator results: equal dynamic types
// and equal values. Values of incomparable types never compare equal.
func sameValue(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return false
	}
	defer func() {
		// Structs and arrays holding interfaces can still panic on ==.
		_ = recover()
	}()
	return a == b
}
