package ima

import (
	"github.com/ima-dev/ima/pkg/dom"
	"github.com/ima-dev/ima/pkg/render"
	"github.com/ima-dev/ima/pkg/shape"
)

// TagFunc builds one kind of element from builder-style arguments.
type TagFunc func(args ...any) *dom.Element

// Tags maps tag names to constructors.
type Tags map[string]TagFunc

// Tag returns the constructor for any tag name.
func (e *Engine) Tag(name string) TagFunc {
	return func(args ...any) *dom.Element { return e.El(name, args...) }
}

// TagNS returns the constructor for a namespaced tag.
func (e *Engine) TagNS(namespace, name string) TagFunc {
	return func(args ...any) *dom.Element {
		props, children := shape.Split(args)
		return e.build(namespace, name, props, children)
	}
}

// Tags returns constructors for every standard HTML element.
func (e *Engine) Tags() Tags {
	out := make(Tags, len(render.TagNames))
	for _, name := range render.TagNames {
		out[name] = e.Tag(name)
	}
	return out
}

// TagsNS returns constructors for the SVG element set in the given
// namespace.
func (e *Engine) TagsNS(namespace string) Tags {
	out := make(Tags, len(render.SVGTagNames))
	for _, name := range render.SVGTagNames {
		out[name] = e.TagNS(namespace, name)
	}
	return out
}

// SVG returns constructors for SVG elements.
func (e *Engine) SVG() Tags {
	return e.TagsNS(render.SVGNamespace)
}

// Get returns the constructor for name, falling back to a generic one for
// names outside the standard set.
func (t Tags) Get(e *Engine, name string) TagFunc {
	if fn, ok := t[name]; ok {
		return fn
	}
	return e.Tag(name)
}
