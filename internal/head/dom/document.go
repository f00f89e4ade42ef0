// Package dom adapts an x/net/html node tree into the live document a head
// session mutates.
//
// Only <html>, <head>, <body>, <title> and elements carrying the managed
// marker are ever read or written; everything else in the tree is opaque.
package dom

import (
	"bytes"
	"io"
	"strings"

	"github.com/louisbranch/headstate/internal/head"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const blankDocument = "<!DOCTYPE html><html><head></head><body></body></html>"

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// New returns an empty document with html, head and body elements.
func New() *Document {
	doc, err := ParseString(blankDocument)
	if err != nil {
		panic(err)
	}
	return doc
}

// Parse reads an HTML document. Missing html, head and body elements are
// synthesized by the parser.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDocumentInvalid, "parse document", err)
	}
	return &Document{root: root}, nil
}

// ParseString reads an HTML document from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// HTML returns the <html> element.
func (d *Document) HTML() *html.Node {
	return findElement(d.root, atom.Html)
}

// Head returns the <head> element.
func (d *Document) Head() *html.Node {
	return findElement(d.root, atom.Head)
}

// Body returns the <body> element.
func (d *Document) Body() *html.Node {
	return findElement(d.root, atom.Body)
}

// TitleElement returns the first <title> element, or nil.
func (d *Document) TitleElement() *html.Node {
	return findElement(d.root, atom.Title)
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	title := d.TitleElement()
	if title == nil {
		return ""
	}
	return TextContent(title)
}

// SetTitle replaces the title text, creating a <title> in <head> if needed.
func (d *Document) SetTitle(title string) {
	el := d.TitleElement()
	if el == nil {
		el = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
		d.Head().AppendChild(el)
	}
	setText(el, title)
}

// Managed returns the elements of type t inside <head> that carry the
// managed marker, in document order.
func (d *Document) Managed(t head.TagType) []*html.Node {
	var out []*html.Node
	walk(d.Head(), func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == string(t) {
			if _, ok := Attr(n, head.ManagedAttribute); ok {
				out = append(out, n)
			}
		}
	})
	return out
}

// Append adds el as the last child of <head>.
func (d *Document) Append(el *html.Node) {
	d.Head().AppendChild(el)
}

// Remove detaches el from its parent.
func (d *Document) Remove(el *html.Node) {
	if el.Parent != nil {
		el.Parent.RemoveChild(el)
	}
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" when rendering fails.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) {
		if found == nil && c.Type == html.ElementNode && c.DataAtom == a {
			found = c
		}
	})
	return found
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
