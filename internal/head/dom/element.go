package dom

import (
	"bytes"
	"strings"

	"github.com/louisbranch/headstate/internal/head"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement builds a managed element for tag. Keys are lower-cased as an
// HTML parser would store them, valueless attributes become empty strings and
// the marker is appended last.
func NewElement(tag head.Tag) *html.Node {
	el := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag.Type)),
		Data:     string(tag.Type),
	}
	for _, attr := range tag.ElementAttributes() {
		el.Attr = append(el.Attr, html.Attribute{Key: strings.ToLower(attr.Key), Val: attr.Value.String()})
	}
	el.Attr = append(el.Attr, html.Attribute{Key: head.ManagedAttribute, Val: "true"})
	if content := tag.Content(); content != "" {
		el.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	}
	return el
}

// TagOf reads el back as a tag of type t, without the managed marker.
func TagOf(t head.TagType, el *html.Node) head.Tag {
	var attrs head.Attributes
	for _, a := range el.Attr {
		if a.Key == head.ManagedAttribute {
			continue
		}
		attrs = attrs.Set(a.Key, head.Text(a.Val))
	}
	if key := t.ContentKey(); key != "" {
		if content := TextContent(el); content != "" {
			attrs = attrs.Set(key, head.Text(content))
		}
	}
	return head.Tag{Type: t, Attributes: attrs}
}

// Attr returns the value of key on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key on n, keeping the position of an existing attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// TextContent concatenates the text children of n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// OuterHTML renders n and its children.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
