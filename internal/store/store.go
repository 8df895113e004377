// Package store is the local source of truth for everything the UI shows:
// recipes, the shopping list, the signed-in user and preferences.
//
// Every mutation is applied to memory before the method returns. Operations
// that also touch the remote store continue in the background and report
// through a *Pending handle; their failure never rolls back local state.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"easydish/internal/auth"
	"easydish/internal/identity"
	"easydish/internal/recipe"
	"easydish/internal/shopping"
	"easydish/internal/storage"
	"easydish/internal/syncer"
)

// DefaultKey is the storage key the snapshot is written under.
const DefaultKey = "easydish-storage"

// ErrInvalidUnitSystem is returned by SetUnitSystem for unknown systems.
var ErrInvalidUnitSystem = errors.New("invalid unit system")

// UnitSystem selects how quantities are displayed.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// Valid reports whether u is a known unit system.
func (u UnitSystem) Valid() bool {
	return u == Metric || u == Imperial
}

// Preferences are device-wide UI settings.
type Preferences struct {
	DarkMode   bool       `json:"darkMode"`
	UnitSystem UnitSystem `json:"unitSystem"`
}

// DefaultPreferences are used until the user changes anything.
func DefaultPreferences() Preferences {
	return Preferences{UnitSystem: Metric}
}

// State is a point-in-time copy of the store. Mutating it has no effect on
// the store.
type State struct {
	Recipes      []recipe.Recipe
	ShoppingList []shopping.Item
	User         *auth.User
	Preferences
}

// Listener is called with a fresh State after every change.
type Listener func(State)

// Store owns recipes, shopping items and preferences, and holds a reference
// to the signed-in user.
type Store struct {
	mu      sync.RWMutex
	recipes []recipe.Recipe
	items   []shopping.Item
	user    *auth.User
	prefs   Preferences

	engine   *syncer.Engine
	pending  *syncer.Tracker

	// Recipe ids changed locally while a fetch was in flight, by generation.
	// A fetch result predates those changes and must not override them.
	gen        uint64
	fetching   int
	fetchStart uint64
	touched    map[string]uint64

	ids      identity.Generator
	persist  *persister
	enricher *Enricher
	logger   *slog.Logger

	wg sync.WaitGroup

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// Option configures a Store.
type Option func(*Store)

// WithSyncEngine enables the remote leg of recipe operations.
func WithSyncEngine(e *syncer.Engine) Option {
	return func(s *Store) { s.engine = e }
}

// WithKV persists a snapshot of the store to kv under key after every change.
func WithKV(kv storage.KV, key string) Option {
	return func(s *Store) {
		if key == "" {
			key = DefaultKey
		}
		s.persist = newPersister(kv, key)
	}
}

// WithIDGenerator replaces the generator for local ids.
func WithIDGenerator(g identity.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEnricher enables catalog matching for shopping items.
func WithEnricher(e *Enricher) Option {
	return func(s *Store) { s.enricher = e }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		recipes:   []recipe.Recipe{},
		items:     []shopping.Item{},
		prefs:     DefaultPreferences(),
		pending:   syncer.NewTracker(),
		touched:   make(map[string]uint64),
		ids:       identity.LocalGenerator{},
		logger:    slog.Default(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = syncer.New(nil, s.logger)
	}
	if s.persist != nil {
		s.persist.logger = s.logger
		go s.persist.run()
	}
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Recipes returns a copy of the recipe list, newest first.
func (s *Store) Recipes() []recipe.Recipe {
	return s.State().Recipes
}

// ShoppingList returns a copy of the shopping list.
func (s *Store) ShoppingList() []shopping.Item {
	return s.State().ShoppingList
}

// Recipe returns the recipe with id.
func (s *Store) Recipe(id string) (recipe.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOfRecipe(id)
	if i < 0 {
		return recipe.Recipe{}, false
	}
	return s.recipes[i].Clone(), true
}

// User returns the signed-in user, or nil.
func (s *Store) User() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Summary recomputes the shopping list aggregates.
func (s *Store) Summary() shopping.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return shopping.Summarize(s.items)
}

// Subscribe registers l for change notifications and returns a func that
// unregisters it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// Wait blocks until every background operation has settled and the latest
// snapshot has been written.
func (s *Store) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		if s.persist != nil {
			s.persist.flush()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for pending operations: %w", ctx.Err())
	}
}

// Close waits for pending work and stops the persister.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Wait(ctx); err != nil {
		return err
	}
	if s.persist != nil {
		s.persist.stop()
	}
	return nil
}

// mutate runs fn under the write lock. When fn reports a change, the new state
// is persisted and listeners are notified.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var snap State
	if changed {
		s.persistLocked()
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return changed
}

func (s *Store) notify(snap State) {
	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

// goAsync runs fn in the background, tracked by Wait.
func (s *Store) goAsync(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Store) snapshotLocked() State {
	recipes := make([]recipe.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		recipes[i] = r.Clone()
	}
	items := make([]shopping.Item, len(s.items))
	for i, item := range s.items {
		if item.Match != nil {
			m := *item.Match
			item.Match = &m
		}
		items[i] = item
	}
	var user *auth.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return State{
		Recipes:      recipes,
		ShoppingList: items,
		User:         user,
		Preferences:  s.prefs,
	}
}

func (s *Store) indexOfRecipe(id string) int {
	return slices.IndexFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
}
