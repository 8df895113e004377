// Package remote is the boundary to the backend-owned relational store: the
// typed row schema of the recipes table, the mapping to and from local
// recipes, and a Postgres implementation of the store and catalog lookups.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"easydish/internal/identity"
	"easydish/internal/recipe"
)

// ErrMalformedRow is returned when a row read from the remote store does not
// match the expected schema. Callers treat it like any other remote failure.
var ErrMalformedRow = errors.New("malformed remote row")

// Row is one record of the remote recipes table.
//
// An empty ID means the column is omitted on write and the store issues one.
type Row struct {
	ID          string              `json:"id,omitempty"`
	UserID      string              `json:"user_id"`
	Title       string              `json:"title"`
	PrepTime    string              `json:"prep_time"`
	Servings    string              `json:"servings"`
	ImageURL    *string             `json:"image_url"`
	Tags        []string            `json:"tags"`
	Ingredients []recipe.Ingredient `json:"ingredients"`
	Steps       []string            `json:"steps"`
	CreatedAt   time.Time           `json:"created_at,omitzero"`
}

// HasID reports whether the row carries a primary key.
func (r Row) HasID() bool {
	return r.ID != ""
}

// Validate checks a row returned by the remote store.
func (r Row) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.By(remoteID)),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	for i, ing := range r.Ingredients {
		if ing.Name == "" {
			return fmt.Errorf("%w: ingredients[%d]: name is required", ErrMalformedRow, i)
		}
	}
	return nil
}

func remoteID(value interface{}) error {
	id, _ := value.(string)
	if !identity.IsRemoteEligible(id) {
		return errors.New("must be a UUID")
	}
	return nil
}

// Product is the best catalog match for a free-text search term.
type Product struct {
	ID           int64
	SKU          string
	Name         string
	CategoryName *string
	PriceAmount  *int64 // minor currency units
}

//go:generate mockgen -source=row.go -destination=mock/remote.go -package=mock

// RecipeStore is row-oriented CRUD over the remote recipes table.
type RecipeStore interface {
	// UpsertRecipe inserts row, or updates the row with the same id, and
	// returns the stored row.
	UpsertRecipe(ctx context.Context, row Row) (Row, error)
	// ListRecipes returns the user's rows, newest first.
	ListRecipes(ctx context.Context, userID string) ([]Row, error)
	// DeleteRecipe removes the row only if it belongs to userID.
	DeleteRecipe(ctx context.Context, id, userID string) error
}

// CatalogMatcher looks up the single best catalog product for a term. A nil
// product with a nil error means no match.
type CatalogMatcher interface {
	MatchProduct(ctx context.Context, term string) (*Product, error)
}
