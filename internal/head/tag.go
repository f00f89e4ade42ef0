package head

import (
	"fmt"
	"strings"
)

// ManagedAttribute marks elements and attributes owned by a head session.
const ManagedAttribute = "data-head-managed"

// Content keys carry inner content rather than element attributes.
const (
	InnerHTMLKey = "innerHTML"
	CSSTextKey   = "cssText"
)

// TagType names a head tag category.
type TagType string

const (
	TagTitle    TagType = "title"
	TagBase     TagType = "base"
	TagMeta     TagType = "meta"
	TagLink     TagType = "link"
	TagScript   TagType = "script"
	TagNoscript TagType = "noscript"
	TagStyle    TagType = "style"
)

// ArrayTagTypes lists the tag types managed as element lists, in commit order.
var ArrayTagTypes = []TagType{TagBase, TagMeta, TagLink, TagScript, TagNoscript, TagStyle}

// SelfClosing reports whether the tag is a void element.
func (t TagType) SelfClosing() bool {
	switch t {
	case TagBase, TagMeta, TagLink:
		return true
	default:
		return false
	}
}

// ContentKey returns the declaration key holding inner content for t, or "".
func (t TagType) ContentKey() string {
	switch t {
	case TagScript, TagNoscript:
		return InnerHTMLKey
	case TagStyle:
		return CSSTextKey
	default:
		return ""
	}
}

// Tag is a validated head element: its type and declared attributes, content
// keys included.
type Tag struct {
	Type       TagType
	Attributes Attributes
}

// Content returns the inner content (innerHTML or cssText) of t.
func (t Tag) Content() string {
	key := t.Type.ContentKey()
	if key == "" {
		return ""
	}
	return t.Attributes.Get(key).String()
}

// ElementAttributes returns the attributes rendered on the element itself,
// without content keys.
func (t Tag) ElementAttributes() Attributes {
	var out Attributes
	for _, attr := range t.Attributes {
		if attr.Key == InnerHTMLKey || attr.Key == CSSTextKey || !attr.Value.IsSet() {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// Identical reports whether t and other produce the same element.
func (t Tag) Identical(other Tag) bool {
	return t.Type == other.Type &&
		t.Content() == other.Content() &&
		t.ElementAttributes().Equal(other.ElementAttributes())
}

// Key is the identity of a tag across contributors.
type Key struct {
	Attribute string
	Value     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s=%q", k.Attribute, k.Value)
}

var metaIdentity = []string{"name", "charset", "http-equiv", "property", "itemprop"}

// Identify validates attrs as a tag of type t and derives its identity key.
// It returns ok=false when the tag is invalid. Base tags are valid without a key.
func Identify(t TagType, attrs Attributes) (key Key, hasKey bool, ok bool) {
	switch t {
	case TagBase:
		_, _, ok = attrs.Lookup("href")
		return Key{}, false, ok
	case TagMeta:
		for _, name := range metaIdentity {
			if _, v, found := attrs.Lookup(name); found {
				return newKey(name, v), true, true
			}
		}
		return Key{}, false, false
	case TagLink:
		_, rel, hasRel := attrs.Lookup("rel")
		_, href, hasHref := attrs.Lookup("href")
		switch {
		case hasRel && strings.EqualFold(rel.String(), "stylesheet") && hasHref:
			return newKey("href", href), true, true
		case hasRel:
			return newKey("rel", rel), true, true
		case hasHref:
			return newKey("href", href), true, true
		}
		return Key{}, false, false
	case TagScript:
		if _, v, found := attrs.Lookup("src"); found {
			return newKey("src", v), true, true
		}
		if v := attrs.Get(InnerHTMLKey); v.IsSet() {
			return newKey(InnerHTMLKey, v), true, true
		}
		return Key{}, false, false
	case TagNoscript:
		if v := attrs.Get(InnerHTMLKey); v.IsSet() {
			return newKey(InnerHTMLKey, v), true, true
		}
		return Key{}, false, false
	case TagStyle:
		if v := attrs.Get(CSSTextKey); v.IsSet() {
			return newKey(CSSTextKey, v), true, true
		}
		return Key{}, false, false
	}
	return Key{}, false, false
}

// Valid reports whether attrs form a valid tag of type t.
func Valid(t TagType, attrs Attributes) bool {
	_, _, ok := Identify(t, attrs)
	return ok
}

func newKey(attribute string, v Value) Key {
	return Key{Attribute: attribute, Value: strings.ToLower(v.String())}
}
