package head

import "golang.org/x/net/html"

// Elements groups live elements by tag type.
type Elements map[TagType][]*html.Node

// Count returns the number of elements across all groups.
func (e Elements) Count() int {
	n := 0
	for _, group := range e {
		n += len(group)
	}
	return n
}

// ChangeFunc observes a live commit: the committed state and the elements
// added and removed by it.
type ChangeFunc func(state State, added, removed Elements)

// Declaration is the head intent of one contributor for one render.
//
// Declarations are replaced wholesale on update; nothing is patched in place.
type Declaration struct {
	Title         Value
	DefaultTitle  Value
	TitleTemplate Value

	TitleAttributes Attributes
	Base            Attributes
	HTMLAttributes  Attributes
	BodyAttributes  Attributes

	Meta     []Attributes
	Link     []Attributes
	Script   []Attributes
	Noscript []Attributes
	Style    []Attributes

	// Defer batches script side effects with the next commit. Nil means true.
	Defer *bool
	// EncodeSpecialCharacters escapes serialized markup. Nil means true.
	EncodeSpecialCharacters *bool

	OnChangeClientState ChangeFunc
}

// Bool returns a pointer to v for optional declaration flags.
func Bool(v bool) *bool {
	return &v
}

// Deferred reports whether script side effects wait for the batched commit.
func (d Declaration) Deferred() bool {
	return d.Defer == nil || *d.Defer
}

// Tags returns the declared entries for an array tag type.
func (d Declaration) Tags(t TagType) []Attributes {
	switch t {
	case TagMeta:
		return d.Meta
	case TagLink:
		return d.Link
	case TagScript:
		return d.Script
	case TagNoscript:
		return d.Noscript
	case TagStyle:
		return d.Style
	case TagBase:
		if d.Base == nil {
			return nil
		}
		return []Attributes{d.Base}
	}
	return nil
}

// InlineScripts returns valid script entries carrying inline content.
func (d Declaration) InlineScripts() []Tag {
	var out []Tag
	for _, attrs := range d.Script {
		if !attrs.Get(InnerHTMLKey).IsSet() || !Valid(TagScript, attrs) {
			continue
		}
		out = append(out, Tag{Type: TagScript, Attributes: attrs.Compact()})
	}
	return out
}
