// Package encoding holds the escaping rules used when document text is
// written into HTML output.
package encoding

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
)

// EscapeText escapes the entities that matter inside element content:
// & < >. Quotes and apostrophes are left alone so compiled streams keep
// the document's punctuation byte for byte.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeHTML additionally escapes double quotes, for text that may end up
// inside an attribute.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SingleLine replaces line breaks with spaces.
func SingleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
