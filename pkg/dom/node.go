package dom

import "strings"

// NodeType is the node type discriminator. Values match the browser's
// Node.nodeType constants.
type NodeType uint8

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	CommentNode  NodeType = 8
	DocumentNode NodeType = 9
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

// Node is implemented by *Element, *Text and *Comment.
type Node interface {
	NodeType() NodeType

	// ParentElement returns the parent element, or nil when detached.
	ParentElement() *Element

	PreviousSibling() Node
	NextSibling() Node

	// IsConnected reports whether the node is reachable from a Document.
	IsConnected() bool

	// ReplaceWith replaces the node with other in its parent's child list.
	// It is a no-op when the node has no parent.
	ReplaceWith(other Node)

	// Remove detaches the node from its parent.
	Remove()

	// TextContent returns the concatenated text of the node and its
	// descendants. Comments contribute nothing.
	TextContent() string

	base() *node
}

// node holds the tree links shared by every node type.
type node struct {
	self   Node
	parent *Element
}

func (n *node) base() *node { return n }

// ParentElement returns the parent element.
func (n *node) ParentElement() *Element { return n.parent }

// PreviousSibling returns the sibling immediately before the node.
func (n *node) PreviousSibling() Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n.self)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// NextSibling returns the sibling immediately after the node.
func (n *node) NextSibling() Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n.self)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// IsConnected walks to the root and checks for an owning Document.
func (n *node) IsConnected() bool {
	return n.document() != nil
}

// document returns the Document the node is connected to, if any.
func (n *node) document() *Document {
	var top *Element
	if el, ok := n.self.(*Element); ok {
		top = el
	}
	for p := n.parent; p != nil; p = p.parent {
		top = p
	}
	if top == nil {
		return nil
	}
	return top.doc
}

// ReplaceWith swaps other into the node's position.
func (n *node) ReplaceWith(other Node) {
	parent := n.parent
	if parent == nil || other == nil || other == n.self {
		return
	}
	other.Remove()
	i := parent.indexOf(n.self)
	if i < 0 {
		return
	}
	parent.children[i] = other
	other.base().parent = parent
	n.parent = nil
	parent.notify(Mutation{Kind: MutationChildList, Target: parent})
}

// Remove detaches the node.
func (n *node) Remove() {
	parent := n.parent
	if parent == nil {
		return
	}
	i := parent.indexOf(n.self)
	if i >= 0 {
		parent.children = append(parent.children[:i], parent.children[i+1:]...)
	}
	n.parent = nil
	parent.notify(Mutation{Kind: MutationChildList, Target: parent})
}

// Text is a character data node.
type Text struct {
	node
	data string
}

// NewText creates a detached text node.
func NewText(data string) *Text {
	t := &Text{data: data}
	t.self = t
	return t
}

// NodeType implements Node.
func (t *Text) NodeType() NodeType { return TextNode }

// Data returns the text.
func (t *Text) Data() string { return t.data }

// SetData replaces the text.
func (t *Text) SetData(data string) {
	if t.data == data {
		return
	}
	t.data = data
	if t.parent != nil {
		t.parent.notify(Mutation{Kind: MutationText, Target: t.parent})
	}
}

// TextContent implements Node.
func (t *Text) TextContent() string { return t.data }

// Comment is a non-rendering node. The engine uses comments as anchors.
type Comment struct {
	node
	data string
}

// NewComment creates a detached comment node.
func NewComment(data string) *Comment {
	c := &Comment{data: data}
	c.self = c
	return c
}

// NodeType implements Node.
func (c *Comment) NodeType() NodeType { return CommentNode }

// Data returns the comment text.
func (c *Comment) Data() string { return c.data }

// TextContent implements Node. Comments have no text content.
func (c *Comment) TextContent() string { return "" }

// textOf concatenates descendant text.
func textOf(children []Node) string {
	var b strings.Builder
	for _, c := range children {
		switch v := c.(type) {
		case *Text:
			b.WriteString(v.data)
		case *Element:
			b.WriteString(textOf(v.children))
		}
	}
	return b.String()
}
