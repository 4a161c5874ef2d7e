package render

import (
	"sort"
	"strings"

	"github.com/ima-dev/ima/pkg/shape"
)

// Props is a static-mode property bag.
type Props = shape.Props

// StaticFunc builds an HTML string for one tag.
type StaticFunc func(args ...any) string

// Static builds the HTML for tag from builder-style arguments.
func Static(tag string, args ...any) string {
	props, children := shape.Split(args)

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := props[key]
		// Listeners and bindings have no static form.
		if strings.HasPrefix(key, "on") || shape.IsFunc(value) {
			continue
		}
		name := key
		if name == "className" {
			name = "class"
		}
		s, present := shape.AttrValue(value)
		if !present {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(name)
		if shape.IsBool(value) {
			continue
		}
		b.WriteString(`="`)
		b.WriteString(escapeStatic(s))
		b.WriteByte('"')
	}

	if IsVoidElement(tag) {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteByte('>')

	// Children are inlined raw so nested Static calls compose.
	for _, child := range shape.Flatten(children) {
		if eval, ok := shape.ToEvaluator(child); ok {
			b.WriteString(shape.String(eval()))
			continue
		}
		if shape.IsFunc(child) {
			continue
		}
		b.WriteString(shape.String(child))
	}

	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return b.String()
}

// Tag returns the static constructor for tag.
func Tag(tag string) StaticFunc {
	return func(args ...any) string { return Static(tag, args...) }
}

// StaticTags returns static constructors keyed by tag name for every tag in
// TagNames.
func StaticTags() map[string]StaticFunc {
	out := make(map[string]StaticFunc, len(TagNames))
	for _, name := range TagNames {
		out[name] = Tag(name)
	}
	return out
}

// Document wraps a static body in an HTML5 page.
func Document(title, head, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="en"><head><meta charset="utf-8"/>`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	b.WriteString("<title>")
	b.WriteString(escapeStatic(title))
	b.WriteString("</title>")
	b.WriteString(head)
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}
