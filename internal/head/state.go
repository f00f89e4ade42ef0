package head

// State is the canonical head composed from every active contributor.
type State struct {
	Title           string
	TitleAttributes Attributes
	// Base holds the winning base attributes; empty when no contributor
	// declared a valid base.
	Base           Attributes
	Meta           []Tag
	Link           []Tag
	Script         []Tag
	Noscript       []Tag
	Style          []Tag
	HTMLAttributes Attributes
	BodyAttributes Attributes

	EncodeSpecialCharacters bool
	OnChangeClientState     ChangeFunc
}

// EmptyState is the state of a session without contributors.
func EmptyState() State {
	return State{EncodeSpecialCharacters: true}
}

// Tags returns the resolved tags for an array tag type.
func (s State) Tags(t TagType) []Tag {
	switch t {
	case TagBase:
		if len(s.Base) == 0 {
			return nil
		}
		return []Tag{{Type: TagBase, Attributes: s.Base}}
	case TagMeta:
		return s.Meta
	case TagLink:
		return s.Link
	case TagScript:
		return s.Script
	case TagNoscript:
		return s.Noscript
	case TagStyle:
		return s.Style
	}
	return nil
}

// Equal reports whether s and other describe the same head, ignoring the
// change callback.
func (s State) Equal(other State) bool {
	if s.Title != other.Title || s.EncodeSpecialCharacters != other.EncodeSpecialCharacters {
		return false
	}
	if !sameOrdered(s.TitleAttributes, other.TitleAttributes) ||
		!sameOrdered(s.Base, other.Base) ||
		!sameOrdered(s.HTMLAttributes, other.HTMLAttributes) ||
		!sameOrdered(s.BodyAttributes, other.BodyAttributes) {
		return false
	}
	for _, t := range ArrayTagTypes {
		a, b := s.Tags(t), other.Tags(t)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Type != b[i].Type || !sameOrdered(a[i].Attributes, b[i].Attributes) {
				return false
			}
		}
	}
	return true
}

func sameOrdered(a, b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
