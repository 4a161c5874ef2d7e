package ima

import (
	"sort"
	"strings"

	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/shape"
)

// Build creates an element from an explicit property bag and child list.
// Function-valued properties and children become bindings; the element is
// complete when Build returns.
func (e *Engine) Build(tag string, props Props, children []any) *dom.Element {
	return e.build("", tag, props, children)
}

// BuildNS is Build for a namespaced element.
func (e *Engine) BuildNS(namespace, tag string, props Props, children []any) *dom.Element {
	return e.build(namespace, tag, props, children)
}

// El creates an element from builder-style arguments: an optional property
// bag followed by children. See shape.Split for how the shape is decided.
func (e *Engine) El(tag string, args ...any) *dom.Element {
	props, children := shape.Split(args)
	return e.build("", tag, props, children)
}

func (e *Engine) build(namespace, tag string, props Props, children []any) *dom.Element {
	el := e.doc.CreateElementNS(namespace, tag)

	keys := make([]string, 0, len(props))
	for k := range props {
		if k != shape.ReservedIs {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		e.applyProp(el, key, props[key])
	}

	flat := shape.Flatten(children)
	if e.textBindings && len(flat) == 1 && shape.Textual(flat[0]) {
		if fn, ok := shape.ToEvaluator(flat[0]); ok {
			e.bindText(el, fn)
			return el
		}
	}
	for _, child := range flat {
		e.appendChild(el, child)
	}
	return el
}

func (e *Engine) applyProp(el *dom.Element, key string, value any) {
	isFunc := shape.IsFunc(value)
	switch {
	case isFunc && strings.HasPrefix(key, "on"):
		listener, ok := shape.ToListener(value)
		if !ok {
			e.logger.Warn("listener signature not supported", "tag", el.TagName(), "prop", key)
			return
		}
		el.AddEventListener(strings.ToLower(key[len("on"):]), listener)
	case isFunc:
		fn, ok := shape.ToEvaluator(value)
		if !ok {
			e.logger.Warn("binding signature not supported", "tag", el.TagName(), "prop", key)
			return
		}
		e.bindAttr(el, key, fn)
	default:
		setAttr(el, key, value)
	}
}

func (e *Engine) appendChild(el *dom.Element, child any) {
	if n, ok := child.(dom.Node); ok {
		el.AppendChild(n)
		return
	}
	if shape.IsFunc(child) {
		fn, ok := shape.ToEvaluator(child)
		if !ok {
			e.logger.Warn("child function signature not supported", "tag", el.TagName())
			return
		}
		e.bindNode(el, fn)
		return
	}
	el.AppendChild(dom.NewText(shape.String(child)))
}
