package render

import "strings"

var (
	fullEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
	)
	attrEscaper = strings.NewReplacer(`"`, "&quot;")
	textEscaper = strings.NewReplacer("<", "&lt;")
)

// escapeAttr escapes an attribute value. With encoding off only the quote
// that would end the value is replaced.
func escapeAttr(s string, encode bool) string {
	if encode {
		return fullEscaper.Replace(s)
	}
	return attrEscaper.Replace(s)
}

// escapeText escapes element text. With encoding off only "<" is replaced so
// the text cannot open a tag.
func escapeText(s string, encode bool) string {
	if encode {
		return fullEscaper.Replace(s)
	}
	return textEscaper.Replace(s)
}
