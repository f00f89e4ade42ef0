package head

import "strings"

// ValueKind distinguishes unset, valueless and textual attribute values.
type ValueKind uint8

const (
	// KindAbsent marks a key the contributor did not specify.
	KindAbsent ValueKind = iota
	// KindEmpty marks a valueless attribute such as <html amp>.
	KindEmpty
	// KindText marks an attribute carrying a string.
	KindText
)

// Value is an attribute value: absent, valueless, or text.
//
// The zero Value is absent.
type Value struct {
	kind ValueKind
	text string
}

// Text returns a value carrying s. An empty s is still a set value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Empty returns the valueless marker.
func Empty() Value {
	return Value{kind: KindEmpty}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsSet reports whether v was specified (valueless or text).
func (v Value) IsSet() bool {
	return v.kind != KindAbsent
}

// IsEmpty reports whether v is the valueless marker.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// String returns the text of v; absent and valueless values yield "".
func (v Value) String() string {
	return v.text
}

// Attr is a single attribute entry.
type Attr struct {
	Key   string
	Value Value
}

// Attributes is an insertion-ordered attribute map.
//
// Setting an existing key replaces its value in place.
type Attributes []Attr

// Pairs builds text attributes from alternating key/value strings. A trailing
// key without a value is ignored.
func Pairs(kv ...string) Attributes {
	attrs := make(Attributes, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = attrs.Set(kv[i], Text(kv[i+1]))
	}
	return attrs
}

// With returns a copy of a with key set to value.
func (a Attributes) With(key string, value Value) Attributes {
	return a.Clone().Set(key, value)
}

// Set assigns value to key, appending the key when it is new. Absent values are
// ignored so unset keys never enter the map.
func (a Attributes) Set(key string, value Value) Attributes {
	if !value.IsSet() {
		return a
	}
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) Value {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value
		}
	}
	return Value{}
}

// Lookup finds key ignoring ASCII case and returns the stored key and value.
func (a Attributes) Lookup(key string) (string, Value, bool) {
	for _, attr := range a {
		if strings.EqualFold(attr.Key, key) && attr.Value.IsSet() {
			return attr.Key, attr.Value, true
		}
	}
	return "", Value{}, false
}

// Has reports whether key is set.
func (a Attributes) Has(key string) bool {
	return a.Get(key).IsSet()
}

// Delete returns a without key.
func (a Attributes) Delete(key string) Attributes {
	out := a[:0:0]
	for _, attr := range a {
		if attr.Key != key {
			out = append(out, attr)
		}
	}
	return out
}

// Keys returns set keys in order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for _, attr := range a {
		if attr.Value.IsSet() {
			keys = append(keys, attr.Key)
		}
	}
	return keys
}

// Compact drops absent entries, keeping the first occurrence of duplicate keys
// positioned where it appeared and the last value assigned to it.
func (a Attributes) Compact() Attributes {
	var out Attributes
	for _, attr := range a {
		out = out.Set(attr.Key, attr.Value)
	}
	return out
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// Merge overwrites same-named keys with values from other and appends new keys.
func (a Attributes) Merge(other Attributes) Attributes {
	out := a.Clone()
	for _, attr := range other {
		out = out.Set(attr.Key, attr.Value)
	}
	return out
}

// Equal reports whether a and b hold the same keys and values, ignoring order
// and key case. Valueless and empty text compare equal because both render
// as "".
func (a Attributes) Equal(b Attributes) bool {
	ac, bc := a.Compact(), b.Compact()
	if len(ac) != len(bc) {
		return false
	}
	for _, attr := range ac {
		_, other, ok := bc.Lookup(attr.Key)
		if !ok || other.String() != attr.Value.String() {
			return false
		}
	}
	return true
}
