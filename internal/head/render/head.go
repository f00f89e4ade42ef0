package render

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/headstate/internal/head"
)

// Head holds a composed state with one view per field.
type Head struct {
	State head.State

	Title    TagView
	Base     TagView
	Meta     TagView
	Link     TagView
	Script   TagView
	Noscript TagView
	Style    TagView

	HTMLAttributes AttributeView
	BodyAttributes AttributeView
}

// FromState builds the views for state.
func FromState(state head.State) Head {
	encode := state.EncodeSpecialCharacters
	return Head{
		State:          state,
		Title:          Title(state.Title, state.TitleAttributes, encode),
		Base:           Tags(state.Tags(head.TagBase), encode),
		Meta:           Tags(state.Meta, encode),
		Link:           Tags(state.Link, encode),
		Script:         Tags(state.Script, encode),
		Noscript:       Tags(state.Noscript, encode),
		Style:          Tags(state.Style, encode),
		HTMLAttributes: RootAttributes(state.HTMLAttributes, encode),
		BodyAttributes: RootAttributes(state.BodyAttributes, encode),
	}
}

// Empty returns the views of the empty state.
func Empty() Head {
	return FromState(head.EmptyState())
}

// Views returns the tag views in the order they belong inside <head>.
func (h Head) Views() []TagView {
	return []TagView{h.Title, h.Base, h.Meta, h.Link, h.Style, h.Script, h.Noscript}
}

// String renders the contents of <head>.
func (h Head) String() string {
	var b strings.Builder
	for _, v := range h.Views() {
		b.WriteString(v.String())
	}
	return b.String()
}

// Component renders the contents of <head> as one templ component.
func (h Head) Component() templ.Component {
	views := h.Views()
	components := make([]templ.Component, 0, len(views))
	for _, v := range views {
		components = append(components, v.Component())
	}
	return templ.Join(components...)
}
