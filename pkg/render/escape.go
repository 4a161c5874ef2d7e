package render

import "strings"

// escapeStatic escapes text for static-mode attribute values. It converts
// the five HTML-significant characters to entities.
func escapeStatic(s string) string {
	if !strings.ContainsAny(s, "&<>\"'") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeText escapes character data the way outerHTML serializes it.
func escapeText(s string) string {
	if !strings.ContainsAny(s, "&<>\u00a0") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '\u00a0':
			buf.WriteString("&nbsp;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes attribute values the way outerHTML serializes them.
func escapeAttr(s string) string {
	if !strings.ContainsAny(s, "&\"\u00a0") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		case '\u00a0':
			buf.WriteString("&nbsp;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
