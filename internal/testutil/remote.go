package testutil

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"easydish/internal/remote"
)

// ErrOffline is what FakeRemote returns while Offline is set.
var ErrOffline = errors.New("remote store unreachable")

// FakeRemote is an in-memory remote.RecipeStore and remote.CatalogMatcher.
type FakeRemote struct {
	mu       sync.Mutex
	rows     []remote.Row
	products map[string]remote.Product
	offline  bool
	gate     chan struct{}
	held     map[string]bool
	calls    map[string]int
}

var (
	_ remote.RecipeStore    = (*FakeRemote)(nil)
	_ remote.CatalogMatcher = (*FakeRemote)(nil)
)

// NewFakeRemote creates an empty, reachable fake.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		products: make(map[string]remote.Product),
		calls:    make(map[string]int),
	}
}

// SetOffline makes every call fail with ErrOffline.
func (f *FakeRemote) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// Hold makes recipe calls block until the returned release func is called.
// With methods given, only those calls block. ListRecipes reads its rows
// before blocking, so a held fetch returns the state from when it was called.
func (f *FakeRemote) Hold(methods ...string) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.held = nil
	if len(methods) > 0 {
		f.held = make(map[string]bool, len(methods))
		for _, m := range methods {
			f.held[m] = true
		}
	}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Seed stores rows as if another device had written them. Rows without an id
// get one.
func (f *FakeRemote) Seed(rows ...remote.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now()
		}
		f.rows = append(f.rows, row)
	}
}

// AddProduct registers a catalog product matched by term.
func (f *FakeRemote) AddProduct(term string, p remote.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[strings.ToLower(term)] = p
}

// Rows returns a copy of every stored row.
func (f *FakeRemote) Rows() []remote.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows)
}

// Calls returns how many times method was invoked.
func (f *FakeRemote) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeRemote) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	f.calls[method]++
	gate := f.gate
	if f.held != nil && !f.held[method] {
		gate = nil
	}
	f.mu.Unlock()

	if gate != nil && method != "MatchProduct" {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return ErrOffline
	}
	return nil
}

func (f *FakeRemote) UpsertRecipe(ctx context.Context, row remote.Row) (remote.Row, error) {
	if err := f.enter(ctx, "UpsertRecipe"); err != nil {
		return remote.Row{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if row.HasID() {
		for i, existing := range f.rows {
			if existing.ID != row.ID {
				continue
			}
			if existing.UserID != row.UserID {
				return remote.Row{}, errors.New("row owned by another user")
			}
			row.CreatedAt = existing.CreatedAt
			f.rows[i] = row
			return row, nil
		}
	} else {
		row.ID = uuid.NewString()
	}
	row.CreatedAt = time.Now()
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *FakeRemote) ListRecipes(ctx context.Context, userID string) ([]remote.Row, error) {
	f.mu.Lock()
	var out []remote.Row
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	f.mu.Unlock()

	if err := f.enter(ctx, "ListRecipes"); err != nil {
		return nil, err
	}

	// Newest first; later inserts win ties.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b remote.Row) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (f *FakeRemote) DeleteRecipe(ctx context.Context, id, userID string) error {
	if err := f.enter(ctx, "DeleteRecipe"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rows = slices.DeleteFunc(f.rows, func(r remote.Row) bool {
		return r.ID == id && r.UserID == userID
	})
	return nil
}

func (f *FakeRemote) MatchProduct(ctx context.Context, term string) (*remote.Product, error) {
	if err := f.enter(ctx, "MatchProduct"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return nil, nil
	}
	return &p, nil
}
