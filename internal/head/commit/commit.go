// Package commit applies a composed head state to a live document.
//
// Only elements and attributes recorded as managed are touched. A commit of
// an unchanged state leaves the document as it is and reports no additions
// or removals.
package commit

import (
	"context"
	"strings"

	"github.com/louisbranch/headstate/internal/head"
	"github.com/louisbranch/headstate/internal/head/dom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

const tracerName = "github.com/louisbranch/headstate/internal/head/commit"

// Change describes one applied commit.
type Change struct {
	State   head.State
	Added   head.Elements
	Removed head.Elements
}

// Empty reports whether the commit added or removed no elements.
func (c Change) Empty() bool {
	return c.Added.Count() == 0 && c.Removed.Count() == 0
}

// Engine applies states to documents.
type Engine struct {
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracerProvider traces commits with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// New creates a commit engine.
func New(opts ...Option) *Engine {
	e := &Engine{tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply mutates doc to reflect state and reports the elements it added and
// removed, grouped by tag type.
func (e *Engine) Apply(ctx context.Context, doc *dom.Document, state head.State) Change {
	_, span := e.tracer.Start(ctx, "head.commit")
	defer span.End()

	updateAttributes(doc.HTML(), state.HTMLAttributes)
	updateAttributes(doc.Body(), state.BodyAttributes)
	updateTitle(doc, state.Title, state.TitleAttributes)

	change := Change{State: state, Added: head.Elements{}, Removed: head.Elements{}}
	for _, t := range head.ArrayTagTypes {
		added, removed := updateTags(doc, t, state.Tags(t))
		if len(added) > 0 {
			change.Added[t] = added
		}
		if len(removed) > 0 {
			change.Removed[t] = removed
		}
	}

	span.SetAttributes(
		attribute.Int("head.added", change.Added.Count()),
		attribute.Int("head.removed", change.Removed.Count()),
	)
	return change
}

func updateTitle(doc *dom.Document, title string, attrs head.Attributes) {
	if title != "" && doc.Title() != title {
		doc.SetTitle(title)
	}
	el := doc.TitleElement()
	if el == nil && len(attrs) > 0 {
		doc.SetTitle(title)
		el = doc.TitleElement()
	}
	updateAttributes(el, attrs)
}

// updateAttributes reconciles attrs onto el. The marker attribute lists the
// keys a previous commit set; keys listed there but missing from attrs are
// removed, attributes never listed are left alone.
func updateAttributes(el *html.Node, attrs head.Attributes) {
	if el == nil {
		return
	}
	var managed []string
	if marker, ok := dom.Attr(el, head.ManagedAttribute); ok && marker != "" {
		managed = strings.Split(marker, ",")
	}

	keys := attrs.Keys()
	for _, key := range keys {
		value := attrs.Get(key).String()
		if current, ok := dom.Attr(el, key); !ok || current != value {
			dom.SetAttr(el, key, value)
		}
	}
	for _, key := range managed {
		if !attrs.Has(key) {
			dom.RemoveAttr(el, key)
		}
	}

	if len(keys) == 0 {
		dom.RemoveAttr(el, head.ManagedAttribute)
		return
	}
	if marker := strings.Join(keys, ","); marker != strings.Join(managed, ",") {
		dom.SetAttr(el, head.ManagedAttribute, marker)
	}
}

// updateTags keeps managed elements identical to a wanted tag, removes the
// rest and appends elements for tags without an identical match.
func updateTags(doc *dom.Document, t head.TagType, tags []head.Tag) (added, removed []*html.Node) {
	existing := doc.Managed(t)
	for _, tag := range tags {
		match := -1
		for i, el := range existing {
			if dom.TagOf(t, el).Identical(tag) {
				match = i
				break
			}
		}
		if match >= 0 {
			existing = append(existing[:match], existing[match+1:]...)
			continue
		}
		added = append(added, dom.NewElement(tag))
	}

	for _, el := range existing {
		doc.Remove(el)
	}
	for _, el := range added {
		doc.Append(el)
	}
	return added, existing
}
