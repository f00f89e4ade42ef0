// Package session is the entry point for hosts that contribute head
// declarations.
//
// A Session owns one registry and one last-committed state. Registrations
// return immediately; in live mode the composed state is committed to the
// document on the next frame, with every change made in between batched into
// that single commit. Without a live document the session only composes on
// demand through Peek and Rewind.
package session

import (
	"context"
	"sync"

	"github.com/louisbranch/headstate/internal/head"
	"github.com/louisbranch/headstate/internal/head/commit"
	"github.com/louisbranch/headstate/internal/head/compose"
	"github.com/louisbranch/headstate/internal/head/dom"
	"github.com/louisbranch/headstate/internal/head/registry"
	"github.com/louisbranch/headstate/internal/head/render"
	"github.com/louisbranch/headstate/internal/head/schedule"
	"github.com/louisbranch/headstate/internal/head/script"
	apperrors "github.com/louisbranch/headstate/internal/platform/errors"
)

// Session composes registered declarations and commits them.
type Session struct {
	logger   head.Logger
	registry *registry.Registry
	composer *compose.Composer
	engine   *commit.Engine
	executor script.Executor
	ledger   *script.Ledger
	batcher  *schedule.Batcher

	mu        sync.Mutex
	doc       *dom.Document
	last      head.State
	committed bool
	listeners map[int]func(commit.Change)
	nextID    int
}

type config struct {
	logger   head.Logger
	frame    schedule.Frame
	executor script.Executor
	engine   *commit.Engine
	doc      *dom.Document
}

// Option configures a Session.
type Option func(*config)

// WithLogger sends diagnostics to logger instead of the standard logger.
func WithLogger(logger head.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithFrame drives batched commits from frame.
func WithFrame(frame schedule.Frame) Option {
	return func(c *config) {
		c.frame = frame
	}
}

// WithExecutor runs inline scripts added to the document with exec.
func WithExecutor(exec script.Executor) Option {
	return func(c *config) {
		c.executor = exec
	}
}

// WithCommitEngine commits through engine.
func WithCommitEngine(engine *commit.Engine) Option {
	return func(c *config) {
		c.engine = engine
	}
}

// WithDocument starts the session in live mode on doc.
func WithDocument(doc *dom.Document) Option {
	return func(c *config) {
		c.doc = doc
	}
}

// New creates a session.
func New(opts ...Option) *Session {
	cfg := config{executor: script.Noop{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.engine == nil {
		cfg.engine = commit.New()
	}

	logger := head.LoggerOrDefault(cfg.logger)
	s := &Session{
		logger:    logger,
		registry:  registry.New(logger),
		composer:  compose.New(logger),
		engine:    cfg.engine,
		executor:  cfg.executor,
		ledger:    script.NewLedger(),
		last:      head.EmptyState(),
		listeners: map[int]func(commit.Change){},
	}
	s.batcher = schedule.New(cfg.frame, s.commit)
	if cfg.doc != nil {
		s.SetDocument(cfg.doc)
	}
	return s
}

// Register adds a contributor. Inline scripts of a contributor that opts out
// of deferral run before Register returns; the returned error reports a
// script failure, the contributor stays registered. Nested contributors are
// ignored, scripts included.
func (s *Session) Register(decl head.Declaration, opts ...registry.Option) (registry.ID, error) {
	s.mu.Lock()
	id := s.registry.Register(decl, opts...)
	pending := s.claimImmediate(id, decl)
	s.mu.Unlock()

	err := s.runScripts(pending)
	s.request()
	return id, err
}

// Update replaces the declaration of id.
func (s *Session) Update(id registry.ID, decl head.Declaration) error {
	s.mu.Lock()
	if err := s.registry.Update(id, decl); err != nil {
		s.mu.Unlock()
		return err
	}
	pending := s.claimImmediate(id, decl)
	s.mu.Unlock()

	err := s.runScripts(pending)
	s.request()
	return err
}

// Unregister removes id; its contribution disappears at the next commit.
func (s *Session) Unregister(id registry.ID) error {
	if err := s.registry.Unregister(id); err != nil {
		return err
	}
	s.request()
	return nil
}

// Peek composes the current contributors without changing anything.
func (s *Session) Peek() render.Head {
	return render.FromState(s.compose())
}

// Rewind returns the composed views and clears the session for the next
// render. It fails when a live document is attached.
func (s *Session) Rewind() (render.Head, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveLocked() {
		return render.Head{}, apperrors.New(apperrors.CodeRewindWithDOM,
			"rewind is only available without a live document; use Peek to read the current state")
	}

	views := render.FromState(s.compose())
	s.registry.Reset()
	s.ledger.Reset()
	s.batcher.Stop()
	s.last = head.EmptyState()
	s.committed = false
	return views, nil
}

// Subscribe calls fn after every commit that changed the document state.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(commit.Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Flush commits a pending change now instead of waiting for the frame.
func (s *Session) Flush() {
	s.batcher.Flush()
}

// SetDocument attaches doc as the live document, or detaches it when nil.
// A newly attached document is reconciled on the next frame.
func (s *Session) SetDocument(doc *dom.Document) {
	s.mu.Lock()
	s.doc = doc
	s.committed = false
	s.last = head.EmptyState()
	s.mu.Unlock()

	s.registry.SetCanUseDOM(doc != nil)
	s.request()
}

// SetCanUseDOM toggles live mode without replacing the document.
func (s *Session) SetCanUseDOM(v bool) {
	s.registry.SetCanUseDOM(v)
	s.request()
}

// Document returns the attached document, or nil.
func (s *Session) Document() *dom.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Contributors lists the registered contributors in composition order.
func (s *Session) Contributors() []registry.Contributor {
	return s.registry.Contributors()
}

// Committed returns the last state committed to the live document.
func (s *Session) Committed() head.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) compose() head.State {
	return s.composer.Compose(s.registry.Declarations())
}

func (s *Session) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked()
}

func (s *Session) liveLocked() bool {
	return s.doc != nil && s.registry.CanUseDOM()
}

func (s *Session) request() {
	if s.live() {
		s.batcher.Request()
	}
}

// claimImmediate picks the inline scripts of a non-deferred declaration that
// are not already in the document and records them, so the commit inserting
// them does not run them again. Each copy of a repeated script is claimed on
// its own. Callers hold s.mu.
func (s *Session) claimImmediate(id registry.ID, decl head.Declaration) []head.Tag {
	if decl.Deferred() || !s.liveLocked() {
		return nil
	}
	if c, ok := s.registry.Get(id); !ok || c.Nested() {
		return nil
	}

	var claimed []head.Tag
	scripts := decl.InlineScripts()
	for i, tag := range scripts {
		copyN := 1
		for j := range i {
			if scripts[j].Identical(tag) {
				copyN++
			}
		}
		if countIdentical(s.last.Script, tag)+s.ledger.Count(tag) >= copyN {
			continue
		}
		s.ledger.Record(tag)
		claimed = append(claimed, tag)
	}
	return claimed
}

func (s *Session) runScripts(tags []head.Tag) error {
	var firstErr error
	for _, tag := range tags {
		if err := s.executor.Execute(context.Background(), tag); err != nil {
			s.logger.Printf("head: inline script failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func countIdentical(tags []head.Tag, tag head.Tag) int {
	n := 0
	for _, t := range tags {
		if t.Identical(tag) {
			n++
		}
	}
	return n
}

func (s *Session) commit() {
	s.mu.Lock()
	if !s.liveLocked() {
		s.mu.Unlock()
		return
	}
	state := s.compose()
	if s.committed && state.Equal(s.last) {
		s.ledger.Reset()
		s.mu.Unlock()
		return
	}
	change := s.engine.Apply(context.Background(), s.doc, state)
	s.last = state
	s.committed = true

	var scripts []head.Tag
	for _, el := range change.Added[head.TagScript] {
		tag := dom.TagOf(head.TagScript, el)
		if tag.Content() == "" || s.ledger.Consume(tag) {
			continue
		}
		scripts = append(scripts, tag)
	}
	// Runs not matched by an inserted element belong to contributors that left
	// or changed before this frame.
	s.ledger.Reset()
	listeners := make([]func(commit.Change), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.Unlock()

	_ = s.runScripts(scripts)
	if state.OnChangeClientState != nil {
		state.OnChangeClientState(state, change.Added, change.Removed)
	}
	for _, fn := range listeners {
		fn(change)
	}
}
