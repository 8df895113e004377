package store

import (
	"context"

	"easydish/internal/syncer"
)

// Pending is the handle for the background part of an operation.
type Pending struct {
	done    chan struct{}
	id      string
	outcome syncer.Outcome
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// settled returns a Pending that has already completed with outcome.
func settled(id string, outcome syncer.Outcome) *Pending {
	p := newPending()
	p.finish(id, outcome)
	return p
}

func (p *Pending) finish(id string, outcome syncer.Outcome) {
	p.id = id
	p.outcome = outcome
	close(p.done)
}

// ID is the id the entity carries once the operation has settled: the id the
// remote store assigned to a synced insert, the local id otherwise. It is
// empty until Done is closed.
func (p *Pending) ID() string {
	select {
	case <-p.done:
		return p.id
	default:
		return ""
	}
}

// Done is closed once the operation has settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (syncer.Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, nil
	case <-ctx.Done():
		return syncer.Skipped, ctx.Err()
	}
}
