package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"easydish/internal/recipe"
	"easydish/internal/remote"
	"easydish/internal/shopping"
)

const (
	// DefaultMatchCacheSize bounds the number of cached catalog lookups.
	DefaultMatchCacheSize = 512
	matchConcurrency      = 4
)

// Enricher looks up catalog products for shopping items. Answers, including
// "no match", are cached per search term; errors are not.
type Enricher struct {
	matcher remote.CatalogMatcher
	cache   *lru.Cache
	logger  *slog.Logger
}

// NewEnricher creates an Enricher backed by matcher.
func NewEnricher(matcher remote.CatalogMatcher, cacheSize int, logger *slog.Logger) (*Enricher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultMatchCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create match cache: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{matcher: matcher, cache: cache, logger: logger}, nil
}

// Match returns the best product for name, or nil when there is none.
func (e *Enricher) Match(ctx context.Context, name string) (*remote.Product, error) {
	term := strings.ToLower(strings.TrimSpace(name))
	if term == "" {
		return nil, nil
	}
	if v, ok := e.cache.Get(term); ok {
		return v.(*remote.Product), nil
	}

	p, err := e.matcher.MatchProduct(ctx, term)
	if err != nil {
		return nil, err
	}
	e.cache.Add(term, p)
	return p, nil
}

// MatchShoppingItems enriches every unmatched item with its catalog match:
// product id and SKU, price and aisle category. Lookups that fail are logged
// and skipped. It returns how many items were matched.
func (s *Store) MatchShoppingItems(ctx context.Context) (int, error) {
	if s.enricher == nil {
		return 0, nil
	}

	type candidate struct{ id, name string }
	s.mu.RLock()
	var todo []candidate
	for _, item := range s.items {
		if !item.Matched() {
			todo = append(todo, candidate{item.ID, item.Name})
		}
	}
	s.mu.RUnlock()

	var (
		mu      sync.Mutex
		matches = make(map[string]*remote.Product)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchConcurrency)
	for _, c := range todo {
		g.Go(func() error {
			p, err := s.enricher.Match(gctx, c.name)
			if err != nil {
				s.logger.Warn("catalog match failed", slog.String("item", c.name), slog.String("error", err.Error()))
				return nil
			}
			if p == nil {
				return nil
			}
			mu.Lock()
			matches[c.id] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var matched int
	s.mutate(func() bool {
		for i := range s.items {
			item := &s.items[i]
			p, ok := matches[item.ID]
			if !ok || item.Matched() {
				continue
			}
			applyProduct(item, p)
			matched++
		}
		return matched > 0
	})
	return matched, nil
}

func applyProduct(item *shopping.Item, p *remote.Product) {
	item.Match = &shopping.CatalogMatch{CatalogID: p.ID, SKU: p.SKU}
	if p.PriceAmount != nil {
		if price, err := shopping.PriceOf(*p.PriceAmount); err == nil {
			item.Price = price
		}
	}
	item.Category = recipe.CategoryOther
	if p.CategoryName != nil {
		item.Category = recipe.Category(*p.CategoryName).OrOther()
	}
}
