package render

import (
	"io"
	"strings"

	"github.com/ima-dev/ima/pkg/dom"
)

// OuterHTML serializes a node and its subtree.
func OuterHTML(n dom.Node) string {
	var b strings.Builder
	writeNode(&b, n, false)
	return b.String()
}

// InnerHTML serializes an element's children.
func InnerHTML(el *dom.Element) string {
	var b strings.Builder
	raw := rawTextElements[el.TagName()]
	for _, c := range el.ChildNodes() {
		writeNode(&b, c, raw)
	}
	return b.String()
}

// WriteNode streams the serialization of n to w.
func WriteNode(w io.Writer, n dom.Node) error {
	_, err := io.WriteString(w, OuterHTML(n))
	return err
}

func writeNode(b *strings.Builder, n dom.Node, rawParent bool) {
	switch v := n.(type) {
	case nil:
		return
	case *dom.Text:
		if rawParent {
			b.WriteString(v.Data())
		} else {
			b.WriteString(escapeText(v.Data()))
		}
	case *dom.Comment:
		b.WriteString("<!--")
		b.WriteString(v.Data())
		b.WriteString("-->")
	case *dom.Element:
		writeElement(b, v)
	}
}

func writeElement(b *strings.Builder, el *dom.Element) {
	tag := el.TagName()
	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range el.Attributes() {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if el.Namespace() == "" && IsVoidElement(tag) {
		return
	}
	raw := rawTextElements[tag]
	for _, c := range el.ChildNodes() {
		writeNode(b, c, raw)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}
