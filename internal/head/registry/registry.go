// Package registry keeps the ordered list of head contributors.
package registry

import (
	"slices"
	"sync"

	"github.com/louisbranch/headstate/internal/head"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
	"github.com/oklog/ulid/v2"
)

// ID identifies a registered contributor.
type ID string

// NewID returns a fresh contributor identity.
func NewID() ID {
	return ID(ulid.Make().String())
}

// Contributor is one registered declaration and its position.
type Contributor struct {
	ID          ID
	Depth       int
	Seq         uint64
	Parent      ID
	Declaration head.Declaration
}

// Nested reports whether the contributor was declared inside another
// contributor. Such contributors never take part in composition.
func (c Contributor) Nested() bool {
	return c.Parent != ""
}

type options struct {
	depth  int
	parent ID
}

// Option positions a contributor at registration.
type Option func(*options)

// AtDepth places the contributor at nesting depth n. Outer contributors use
// smaller depths.
func AtDepth(n int) Option {
	return func(o *options) {
		o.depth = n
	}
}

// Within marks the contributor as declared inside parent's own declaration.
func Within(parent ID) Option {
	return func(o *options) {
		o.parent = parent
	}
}

// Registry holds contributors ordered by depth, then registration order.
type Registry struct {
	logger head.Logger

	mu           sync.RWMutex
	seq          uint64
	contributors []Contributor
	canUseDOM    bool
}

// New creates an empty registry.
func New(logger head.Logger) *Registry {
	return &Registry{logger: head.LoggerOrDefault(logger)}
}

// Register adds decl and returns its identity.
func (r *Registry) Register(decl head.Declaration, opts ...Option) ID {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := Contributor{
		ID:          NewID(),
		Depth:       o.depth,
		Seq:         r.seq,
		Parent:      o.parent,
		Declaration: decl,
	}
	if c.Nested() {
		r.logger.Printf("head: contributor %s is nested inside %s and will be ignored", c.ID, c.Parent)
	}

	at := slices.IndexFunc(r.contributors, func(existing Contributor) bool {
		return existing.Depth > c.Depth
	})
	if at < 0 {
		at = len(r.contributors)
	}
	r.contributors = slices.Insert(r.contributors, at, c)
	return c.ID
}

// Update replaces the declaration of id.
func (r *Registry) Update(id ID, decl head.Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return notFound(id)
	}
	r.contributors[i].Declaration = decl
	return nil
}

// Unregister removes id.
func (r *Registry) Unregister(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return notFound(id)
	}
	r.contributors = slices.Delete(r.contributors, i, i+1)
	return nil
}

// Get returns the contributor registered as id.
func (r *Registry) Get(id ID) (Contributor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return Contributor{}, false
	}
	return r.contributors[i], true
}

// Contributors returns every contributor in order, nested ones included.
func (r *Registry) Contributors() []Contributor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.contributors)
}

// Declarations returns the composition input, outermost first.
func (r *Registry) Declarations() []head.Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]head.Declaration, 0, len(r.contributors))
	for _, c := range r.contributors {
		if c.Nested() {
			continue
		}
		out = append(out, c.Declaration)
	}
	return out
}

// Len reports the number of registered contributors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contributors)
}

// Reset removes every contributor.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contributors = nil
}

// SetCanUseDOM records whether the host has a live document.
func (r *Registry) SetCanUseDOM(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canUseDOM = v
}

// CanUseDOM reports the live document flag.
func (r *Registry) CanUseDOM() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canUseDOM
}

func (r *Registry) index(id ID) int {
	return slices.IndexFunc(r.contributors, func(c Contributor) bool {
		return c.ID == id
	})
}

func notFound(id ID) error {
	return apperrors.WithMetadata(apperrors.CodeContributorNotFound,
		"contributor not found: "+string(id), map[string]string{"id": string(id)})
}
