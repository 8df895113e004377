package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"easydish/internal/recipe"
	"easydish/internal/shopping"
	"easydish/internal/storage"
)

// snapshotVersion is bumped when the persisted layout changes incompatibly.
const snapshotVersion = 0

// snapshot is the persisted document. The user is deliberately absent: it is
// re-announced by the auth session on every start.
type snapshot struct {
	State struct {
		Recipes      []recipe.Recipe `json:"recipes"`
		ShoppingList []shopping.Item `json:"shoppingList"`
		DarkMode     bool            `json:"darkMode"`
		UnitSystem   UnitSystem      `json:"unitSystem"`
	} `json:"state"`
	Version int `json:"version"`
}

// Load rehydrates recipes, the shopping list and preferences from storage.
// A missing snapshot leaves the store empty.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	data, err := s.persist.kv.Get(ctx, s.persist.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	recipes := make([]recipe.Recipe, 0, len(snap.State.Recipes))
	for _, r := range snap.State.Recipes {
		r = r.WithDefaults()
		if err := r.Validate(); err != nil {
			s.logger.Warn("dropping invalid stored recipe", slog.String("recipe_id", r.ID), slog.String("error", err.Error()))
			continue
		}
		recipes = append(recipes, r)
	}
	items := snap.State.ShoppingList
	if items == nil {
		items = []shopping.Item{}
	}
	for i := range items {
		items[i].Category = items[i].Category.OrOther()
	}
	prefs := Preferences{DarkMode: snap.State.DarkMode, UnitSystem: snap.State.UnitSystem}
	if !prefs.UnitSystem.Valid() {
		prefs.UnitSystem = Metric
	}

	s.mu.Lock()
	s.recipes = recipes
	s.items = items
	s.prefs = prefs
	snapState := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("store rehydrated",
		slog.Int("recipes", len(recipes)),
		slog.Int("shopping_items", len(items)),
	)
	s.notify(snapState)
	return nil
}

// persistLocked hands the current state to the persister. Callers hold s.mu,
// which keeps submissions in mutation order.
func (s *Store) persistLocked() {
	if s.persist == nil {
		return
	}

	var snap snapshot
	snap.Version = snapshotVersion
	snap.State.Recipes = s.recipes
	snap.State.ShoppingList = s.items
	snap.State.DarkMode = s.prefs.DarkMode
	snap.State.UnitSystem = s.prefs.UnitSystem

	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to encode snapshot", slog.String("error", err.Error()))
		return
	}
	s.persist.submit(data)
}

// persister writes snapshots in the background. Only the newest pending
// snapshot is written; intermediate ones are skipped.
type persister struct {
	kv     storage.KV
	key    string
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	latest  []byte
	seq     uint64
	written uint64
	closed  bool

	signal  chan struct{}
	stopped chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newPersister(kv storage.KV, key string) *persister {
	p := &persister{
		kv:      kv,
		key:     key,
		logger:  slog.Default(),
		signal:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// submit queues data for writing. After stop it is dropped.
func (p *persister) submit(data []byte) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.latest = data
	p.seq++
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer func() {
		p.mu.Lock()
		p.closed = true
		p.cond.Broadcast()
		p.mu.Unlock()
		close(p.done)
	}()
	for {
		select {
		case <-p.signal:
			p.write()
		case <-p.stopped:
			p.write()
			return
		}
	}
}

func (p *persister) write() {
	p.mu.Lock()
	data, seq := p.latest, p.seq
	p.mu.Unlock()
	if seq == p.writtenSeq() {
		return
	}

	if err := p.kv.Set(context.Background(), p.key, data); err != nil {
		p.logger.Error("failed to persist snapshot", slog.String("key", p.key), slog.String("error", err.Error()))
	}

	p.mu.Lock()
	p.written = seq
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *persister) writtenSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// flush blocks until the newest submitted snapshot has been written or the
// persister has stopped.
func (p *persister) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.written < p.seq && !p.closed {
		p.cond.Wait()
	}
}

func (p *persister) stop() {
	p.once.Do(func() { close(p.stopped) })
	<-p.done
}
