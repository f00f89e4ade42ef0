// Package head defines the head intent model shared by every stage of a head
// session: attribute values with an explicit valueless marker, ordered
// attribute maps, tag validation and identity keys, contributor declarations
// and the composed state.
//
// A tag is kept only when it carries the attribute that identifies its type:
//
//	base      href
//	meta      name, charset, http-equiv, property or itemprop
//	link      rel or href (href identifies stylesheets)
//	script    src or innerHTML
//	noscript  innerHTML
//	style     cssText
package head
