// Package compose reduces ordered contributor declarations into one canonical
// head state.
//
// Contributors are ordered outermost first. Singleton fields resolve to the
// innermost contributor that sets them; list fields merge by identity key so
// an inner contributor replaces an outer tag at the outer tag's position.
package compose

import (
	"strings"

	"github.com/louisbranch/headstate/internal/head"
)

// titlePlaceholder is substituted with the resolved title in a template.
const titlePlaceholder = "%s"

// Composer folds declarations into a head.State.
type Composer struct {
	logger head.Logger
}

// New creates a composer reporting dropped tags to logger.
func New(logger head.Logger) *Composer {
	return &Composer{logger: head.LoggerOrDefault(logger)}
}

// Compose reduces decls, outermost first, into a canonical state. The same
// input always yields an equal state.
func (c *Composer) Compose(decls []head.Declaration) head.State {
	state := head.EmptyState()

	var title, defaultTitle, template head.Value
	for _, decl := range decls {
		if decl.Title.IsSet() {
			title = decl.Title
		}
		if decl.DefaultTitle.IsSet() {
			defaultTitle = decl.DefaultTitle
		}
		if decl.TitleTemplate.IsSet() {
			template = decl.TitleTemplate
		}
		state.TitleAttributes = state.TitleAttributes.Merge(decl.TitleAttributes)
		state.HTMLAttributes = state.HTMLAttributes.Merge(decl.HTMLAttributes)
		state.BodyAttributes = state.BodyAttributes.Merge(decl.BodyAttributes)

		if decl.Base != nil {
			if head.Valid(head.TagBase, decl.Base) {
				state.Base = decl.Base.Compact()
			} else {
				c.logger.Printf("head: dropping base tag without href: %v", decl.Base.Keys())
			}
		}
		if decl.EncodeSpecialCharacters != nil {
			state.EncodeSpecialCharacters = *decl.EncodeSpecialCharacters
		}
		if decl.OnChangeClientState != nil {
			state.OnChangeClientState = decl.OnChangeClientState
		}
	}
	state.Title = resolveTitle(title.String(), template, defaultTitle.String())

	state.Meta = c.mergeTags(head.TagMeta, decls)
	state.Link = c.mergeTags(head.TagLink, decls)
	state.Script = c.mergeTags(head.TagScript, decls)
	state.Noscript = c.mergeTags(head.TagNoscript, decls)
	state.Style = c.mergeTags(head.TagStyle, decls)
	return state
}

// Compose reduces decls with the standard logger.
func Compose(decls []head.Declaration) head.State {
	return New(nil).Compose(decls)
}

func resolveTitle(title string, template head.Value, fallback string) string {
	if title == "" {
		return fallback
	}
	if template.IsSet() {
		return strings.ReplaceAll(template.String(), titlePlaceholder, title)
	}
	return title
}

type entry struct {
	tag      head.Tag
	owner    int
	key      head.Key
	keyed    bool
	takeover bool
}

// mergeTags walks contributors in order keeping one working list. A key owned
// by an earlier contributor is taken over: its earlier entries are deleted and
// the new entries are placed, in declared order, where the first deleted entry
// stood. Keys new to the list are appended, duplicates from one contributor
// are kept.
func (c *Composer) mergeTags(t head.TagType, decls []head.Declaration) []head.Tag {
	var list []entry
	for owner, decl := range decls {
		for _, attrs := range decl.Tags(t) {
			key, keyed, ok := head.Identify(t, attrs)
			if !ok {
				c.logger.Printf("head: dropping %s tag without an identifying attribute: %v", t, attrs.Keys())
				continue
			}
			e := entry{
				tag:   head.Tag{Type: t, Attributes: attrs.Compact()},
				owner: owner,
				key:   key,
				keyed: keyed,
			}
			list = place(list, e)
		}
	}
	if len(list) == 0 {
		return nil
	}
	tags := make([]head.Tag, len(list))
	for i, e := range list {
		tags[i] = e.tag
	}
	return tags
}

func place(list []entry, e entry) []entry {
	if !e.keyed {
		return append(list, e)
	}

	first := -1
	kept := list[:0:0]
	for _, existing := range list {
		if existing.keyed && existing.key == e.key && existing.owner != e.owner {
			if first < 0 {
				first = len(kept)
			}
			continue
		}
		kept = append(kept, existing)
	}
	if first >= 0 {
		e.takeover = true
		return insert(kept, first, e)
	}

	last := -1
	for i, existing := range list {
		if existing.keyed && existing.key == e.key && existing.owner == e.owner && existing.takeover {
			last = i
		}
	}
	if last >= 0 {
		e.takeover = true
		return insert(list, last+1, e)
	}
	return append(list, e)
}

func insert(list []entry, at int, e entry) []entry {
	list = append(list, entry{})
	copy(list[at+1:], list[at:])
	list[at] = e
	return list
}
