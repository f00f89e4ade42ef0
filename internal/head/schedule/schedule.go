// Package schedule coalesces commit requests into one commit per frame.
//
// A Batcher moves Idle -> Pending -> Committing -> Idle. Requests made while a
// commit is pending are absorbed by it; a request made while committing
// schedules exactly one follow-up frame.
package schedule

import (
	"sync"
	"time"
)

// Phase is the batcher state.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committing:
		return "committing"
	}
	return "unknown"
}

// DefaultFrameDelay approximates one display frame.
const DefaultFrameDelay = 16 * time.Millisecond

// Frame delivers a deferred callback.
type Frame interface {
	Schedule(fn func())
}

// TimerFrame runs callbacks on a timer goroutine after Delay.
type TimerFrame struct {
	Delay time.Duration
}

// Schedule implements Frame.
func (f TimerFrame) Schedule(fn func()) {
	delay := f.Delay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}
	time.AfterFunc(delay, fn)
}

// ManualFrame queues callbacks until the host advances it.
type ManualFrame struct {
	mu    sync.Mutex
	queue []func()
}

// Schedule implements Frame.
func (f *ManualFrame) Schedule(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

// Advance runs the callbacks queued so far and returns how many ran.
// Callbacks scheduled while advancing wait for the next call.
func (f *ManualFrame) Advance() int {
	f.mu.Lock()
	queue := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Len reports the number of queued callbacks.
func (f *ManualFrame) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Batcher runs commit at most once per frame.
type Batcher struct {
	frame  Frame
	commit func()

	mu       sync.Mutex
	phase    Phase
	followUp bool
	// gen identifies the scheduled frame; callbacks from stale frames are
	// ignored after Flush or Stop.
	gen uint64
}

// New creates a batcher. A nil frame uses a TimerFrame with the default delay.
func New(frame Frame, commit func()) *Batcher {
	if frame == nil {
		frame = TimerFrame{}
	}
	return &Batcher{frame: frame, commit: commit}
}

// Phase reports the current state.
func (b *Batcher) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Request asks for a commit on the next frame.
func (b *Batcher) Request() {
	b.mu.Lock()
	switch b.phase {
	case Idle:
		gen := b.arm()
		b.mu.Unlock()
		b.schedule(gen)
		return
	case Committing:
		b.followUp = true
	}
	b.mu.Unlock()
}

// Flush runs a pending commit immediately. It does nothing when no commit
// is pending or one is already running.
func (b *Batcher) Flush() {
	b.mu.Lock()
	if b.phase != Pending {
		b.mu.Unlock()
		return
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()
	b.run(gen)
}

// Stop drops a pending commit and any requested follow-up.
func (b *Batcher) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.followUp = false
	if b.phase == Pending {
		b.phase = Idle
	}
}

// arm moves to Pending and returns the new frame generation. b.mu must be held.
func (b *Batcher) arm() uint64 {
	b.phase = Pending
	b.gen++
	return b.gen
}

func (b *Batcher) schedule(gen uint64) {
	b.frame.Schedule(func() { b.run(gen) })
}

func (b *Batcher) run(gen uint64) {
	b.mu.Lock()
	if b.phase != Pending || b.gen != gen {
		b.mu.Unlock()
		return
	}
	b.phase = Committing
	b.mu.Unlock()

	b.commit()

	b.mu.Lock()
	if !b.followUp {
		b.phase = Idle
		b.mu.Unlock()
		return
	}
	b.followUp = false
	next := b.arm()
	b.mu.Unlock()
	b.schedule(next)
}
