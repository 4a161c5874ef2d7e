package dom

import "sort"

// MutationKind classifies a Mutation.
type MutationKind uint8

const (
	MutationAttribute MutationKind = iota
	MutationText
	MutationChildList
)

// String returns the string representation of the MutationKind.
func (k MutationKind) String() string {
	switch k {
	case MutationAttribute:
		return "attributes"
	case MutationText:
		return "characterData"
	case MutationChildList:
		return "childList"
	default:
		return "unknown"
	}
}

// Mutation describes a single change to a connected node.
type Mutation struct {
	Kind   MutationKind
	Target *Element
	// Name is the attribute name for MutationAttribute.
	Name string
}

// Document is the connectivity root. Nodes are connected when their
// ancestor chain ends at the document's root element.
type Document struct {
	root      *Element
	head      *Element
	body      *Element
	observers map[int]func(Mutation)
	nextObs   int
	mutations uint64
}

// NewDocument creates a document with <html>, <head> and <body>.
func NewDocument() *Document {
	d := &Document{observers: make(map[int]func(Mutation))}
	d.root = NewElement("html")
	d.root.doc = d
	d.head = NewElement("head")
	d.body = NewElement("body")
	d.root.AppendChild(d.head)
	d.root.AppendChild(d.body)
	d.mutations = 0
	return d
}

// NodeType returns DocumentNode.
func (d *Document) NodeType() NodeType { return DocumentNode }

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element { return d.root }

// Head returns the <head> element.
func (d *Document) Head() *Element { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Element { return d.body }

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Element { return NewElement(tag) }

// CreateElementNS creates a detached namespaced element.
func (d *Document) CreateElementNS(namespace, tag string) *Element {
	return NewElementNS(namespace, tag)
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string) *Text { return NewText(data) }

// CreateComment creates a detached comment.
func (d *Document) CreateComment(data string) *Comment { return NewComment(data) }

// GetElementByID searches the connected tree.
func (d *Document) GetElementByID(id string) *Element {
	return d.root.QuerySelectorID(id)
}

// Observe registers fn for every mutation to connected nodes. The returned
// function unregisters it.
func (d *Document) Observe(fn func(Mutation)) (cancel func()) {
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	return func() { delete(d.observers, id) }
}

// MutationCount returns the number of mutations applied to connected nodes.
func (d *Document) MutationCount() uint64 { return d.mutations }

func (d *Document) record(m Mutation) {
	d.mutations++
	if len(d.observers) == 0 {
		return
	}
	ids := make([]int, 0, len(d.observers))
	for id := range d.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := d.observers[id]; ok {
			fn(m)
		}
	}
}
