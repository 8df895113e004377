// Package identity validates and generates entity identifiers.
//
// Identifiers issued by the remote store are canonical UUIDs. Anything created
// on this side before the remote store has confirmed it gets a local token that
// is deliberately not UUID-shaped, so it can never be mistaken for a remote
// primary key.
package identity

import (
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// canonicalLen is the length of the 8-4-4-4-12 textual UUID form.
const canonicalLen = 36

// IsRemoteEligible reports whether id has the canonical 8-4-4-4-12 hexadecimal
// UUID shape (case-insensitive). Only such ids may appear in remote writes or deletes.
func IsRemoteEligible(id string) bool {
	// uuid.Parse also accepts the braced, urn and 32-char forms; pin the length
	// so only the hyphenated shape passes.
	if len(id) != canonicalLen {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Generator produces identifiers for entities that have not been confirmed remotely.
type Generator interface {
	NewID() string
}

// LocalGenerator issues timestamp-prefixed random tokens.
//
// Format: "<unix millis base36>-<12 hex chars>", e.g. "lq2x8k3f-9f86d081884c".
// The result is never UUID-shaped.
type LocalGenerator struct{}

// NewID returns a fresh local token.
func (LocalGenerator) NewID() string {
	u := uuid.New()
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + hex.EncodeToString(u[:6])
}

// NewLocalID is shorthand for LocalGenerator{}.NewID().
func NewLocalID() string {
	return LocalGenerator{}.NewID()
}

// FixedGenerator returns predetermined ids in order, for deterministic tests.
// Once exhausted it falls back to LocalGenerator.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that hands out ids in the given order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		return NewLocalID()
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
