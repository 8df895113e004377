package syncer

import "sync"

// Token identifies one in-flight remote operation on an entity.
type Token struct {
	ID  string
	seq uint64
}

// Tracker records the latest pending operation per entity id. A result is
// only committed if its token is still the latest for that id; an older
// in-flight operation is superseded as soon as a newer one begins.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]uint64)}
}

// Begin starts a new operation on id, superseding any earlier one.
func (t *Tracker) Begin(id string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.latest[id] = t.seq
	return Token{ID: id, seq: t.seq}
}

// Current reports whether tok is still the latest operation for its id.
func (t *Tracker) Current(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.latest[tok.ID] == tok.seq
}

// Active reports whether any operation on id is in flight.
func (t *Tracker) Active(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.latest[id]
	return ok
}

// Finish ends tok. It is a no-op when tok was superseded.
func (t *Tracker) Finish(tok Token) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest[tok.ID] == tok.seq {
		delete(t.latest, tok.ID)
	}
}
