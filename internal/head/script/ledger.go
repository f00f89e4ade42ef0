package script

import (
	"sort"
	"strings"
	"sync"

	"github.com/louisbranch/headstate/internal/head"
)

// Ledger remembers scripts that already ran outside a commit, so the commit
// that later inserts the same element does not run them a second time.
type Ledger struct {
	mu   sync.Mutex
	runs map[string]int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{runs: map[string]int{}}
}

// Record notes one run of tag.
func (l *Ledger) Record(tag head.Tag) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[fingerprint(tag)]++
}

// Count reports the unconsumed runs recorded for tag.
func (l *Ledger) Count(tag head.Tag) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runs[fingerprint(tag)]
}

// Consume reports whether a recorded run of tag exists and removes it.
func (l *Ledger) Consume(tag head.Tag) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := fingerprint(tag)
	if l.runs[key] == 0 {
		return false
	}
	l.runs[key]--
	if l.runs[key] == 0 {
		delete(l.runs, key)
	}
	return true
}

// Len reports the number of recorded runs not yet consumed.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.runs {
		n += c
	}
	return n
}

// Reset forgets every recorded run.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.runs)
}

// fingerprint identifies the element tag produces, independent of attribute
// order and key case.
func fingerprint(tag head.Tag) string {
	attrs := tag.ElementAttributes().Compact()
	pairs := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		pairs = append(pairs, strings.ToLower(attr.Key)+"="+attr.Value.String())
	}
	sort.Strings(pairs)
	return string(tag.Type) + "\x00" + strings.Join(pairs, "\x00") + "\x00" + tag.Content()
}
