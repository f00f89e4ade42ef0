// Package render serializes a composed head state for documents that are
// generated rather than mutated in place.
//
// Every view is available as a markup string, as structured nodes and as a
// templ component so it can be spliced into generated pages.
package render

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/headstate/internal/head"
)

// Node is the structured form of one rendered element.
type Node struct {
	Type       head.TagType
	Attributes head.Attributes
	// Content is the inner text. Title text is escaped when rendered; inline
	// script, noscript and style content is written verbatim.
	Content string
}

// TagView renders the elements of one tag type.
type TagView struct {
	nodes  []Node
	encode bool
}

// Tags builds the view for tags.
func Tags(tags []head.Tag, encode bool) TagView {
	view := TagView{encode: encode}
	for _, tag := range tags {
		view.nodes = append(view.nodes, Node{
			Type:       tag.Type,
			Attributes: tag.ElementAttributes(),
			Content:    tag.Content(),
		})
	}
	return view
}

// Title builds the title view. It always holds exactly one element.
func Title(title string, attrs head.Attributes, encode bool) TagView {
	return TagView{
		nodes:  []Node{{Type: head.TagTitle, Attributes: attrs.Compact(), Content: title}},
		encode: encode,
	}
}

// Nodes returns a copy of the structured elements.
func (v TagView) Nodes() []Node {
	out := make([]Node, 0, len(v.nodes))
	for _, n := range v.nodes {
		n.Attributes = n.Attributes.Clone()
		out = append(out, n)
	}
	return out
}

// Len reports the number of elements in the view.
func (v TagView) Len() int {
	return len(v.nodes)
}

// String renders the elements as concatenated markup.
func (v TagView) String() string {
	var b strings.Builder
	for _, n := range v.nodes {
		writeNode(&b, n, v.encode)
	}
	return b.String()
}

// Component returns the markup as a templ component.
func (v TagView) Component() templ.Component {
	return templ.Raw(v.String())
}

func writeNode(b *strings.Builder, n Node, encode bool) {
	b.WriteString("<")
	b.WriteString(string(n.Type))
	b.WriteString(" ")
	b.WriteString(head.ManagedAttribute)
	b.WriteString(`="true"`)
	for _, attr := range n.Attributes {
		b.WriteString(" ")
		writeAttr(b, attr, encode)
	}
	if n.Type.SelfClosing() {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	if n.Type == head.TagTitle {
		b.WriteString(escapeText(n.Content, encode))
	} else {
		b.WriteString(n.Content)
	}
	b.WriteString("</")
	b.WriteString(string(n.Type))
	b.WriteString(">")
}

func writeAttr(b *strings.Builder, attr head.Attr, encode bool) {
	b.WriteString(attr.Key)
	if attr.Value.IsEmpty() {
		return
	}
	b.WriteString(`="`)
	b.WriteString(escapeAttr(attr.Value.String(), encode))
	b.WriteString(`"`)
}

// AttributeView renders the managed attributes of a root element.
type AttributeView struct {
	attrs  head.Attributes
	encode bool
}

// RootAttributes builds the view for <html>, <body> or title attributes.
func RootAttributes(attrs head.Attributes, encode bool) AttributeView {
	return AttributeView{attrs: attrs.Compact(), encode: encode}
}

// Attributes returns a copy of the attributes.
func (v AttributeView) Attributes() head.Attributes {
	return v.attrs.Clone()
}

// String renders space separated key="value" pairs without the marker.
func (v AttributeView) String() string {
	var b strings.Builder
	for i, attr := range v.attrs {
		if i > 0 {
			b.WriteString(" ")
		}
		writeAttr(&b, attr, v.encode)
	}
	return b.String()
}

// Templ returns the attributes for spreading onto a templ element.
// Valueless attributes are rendered bare.
func (v AttributeView) Templ() templ.OrderedAttributes {
	out := make(templ.OrderedAttributes, 0, len(v.attrs))
	for _, attr := range v.attrs {
		if attr.Value.IsEmpty() {
			out = append(out, templ.KV[string, any](attr.Key, true))
			continue
		}
		out = append(out, templ.KV[string, any](attr.Key, attr.Value.String()))
	}
	return out
}
