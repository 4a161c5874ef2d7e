package render

// voidElements are elements that cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// rawTextElements hold text that outerHTML does not escape.
var rawTextElements = map[string]bool{
	"style":     true,
	"script":    true,
	"xmp":       true,
	"iframe":    true,
	"noembed":   true,
	"noframes":  true,
	"plaintext": true,
}

// TagNames lists the HTML element names that get a named constructor.
var TagNames = []string{
	"a", "abbr", "address", "area", "article", "aside", "audio",
	"b", "base", "bdi", "bdo", "blockquote", "body", "br", "button",
	"canvas", "caption", "cite", "code", "col", "colgroup",
	"data", "datalist", "dd", "del", "details", "dfn", "dialog", "div", "dl", "dt",
	"em", "embed",
	"fieldset", "figcaption", "figure", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hgroup", "hr", "html",
	"i", "iframe", "img", "input", "ins",
	"kbd",
	"label", "legend", "li", "link",
	"main", "map", "mark", "menu", "meta", "meter",
	"nav", "noscript",
	"object", "ol", "optgroup", "option", "output",
	"p", "param", "picture", "pre", "progress",
	"q",
	"rp", "rt", "ruby",
	"s", "samp", "script", "search", "section", "select", "slot", "small", "source", "span",
	"strong", "style", "sub", "summary", "sup",
	"table", "tbody", "td", "template", "textarea", "tfoot", "th", "thead", "time", "title",
	"tr", "track",
	"u", "ul",
	"var", "video",
	"wbr",
}

// SVGNamespace is the namespace URI for SVG elements.
const SVGNamespace = "http://www.w3.org/2000/svg"

// SVGTagNames lists SVG element names that get a named constructor in the
// SVG namespace.
var SVGTagNames = []string{
	"svg", "g", "defs", "use", "symbol", "path", "rect", "circle", "ellipse",
	"line", "polyline", "polygon", "text", "tspan", "image", "clipPath", "mask",
	"linearGradient", "radialGradient", "stop", "pattern", "filter", "foreignObject",
}
