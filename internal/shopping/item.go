// Package shopping holds the shopping list model and the pure derivations the
// UI renders from it.
package shopping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"easydish/internal/recipe"
)

// ErrNegativePrice is returned when a price below zero is supplied.
var ErrNegativePrice = errors.New("price must not be negative")

// Item is one line of the shopping list. Items never leave this device.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    string          `json:"amount"`
	Category  recipe.Category `json:"category"`
	Completed bool            `json:"completed"`
	// SourceRecipe is the title of the recipe the item came from. It is a copy,
	// not a reference, and outlives the recipe.
	SourceRecipe string        `json:"sourceRecipe,omitempty"`
	Price        Price         `json:"price"`
	Match        *CatalogMatch `json:"match,omitempty"`
}

// Matched reports whether the item was enriched from the product catalog.
func (i Item) Matched() bool {
	return i.Match != nil
}

// CatalogMatch records which catalog product an item was matched to.
type CatalogMatch struct {
	CatalogID int64  `json:"catalogId"`
	SKU       string `json:"sku"`
}

// FromIngredients builds one unchecked item per ingredient, stamped with a
// fresh id from newID and the recipe title as provenance.
func FromIngredients(r recipe.Recipe, newID func() string) []Item {
	items := make([]Item, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		items = append(items, Item{
			ID:           newID(),
			Name:         ing.Name,
			Amount:       ing.Amount,
			Category:     ing.Category.OrOther(),
			SourceRecipe: r.Title,
		})
	}
	return items
}

// Price is an optional amount in minor currency units (cents). The zero value
// is "no price".
type Price struct {
	cents int64
	valid bool
}

// PriceOf returns a price of cents, rejecting negative amounts.
func PriceOf(cents int64) (Price, error) {
	if cents < 0 {
		return Price{}, fmt.Errorf("%w: %d", ErrNegativePrice, cents)
	}
	return Price{cents: cents, valid: true}, nil
}

// NoPrice returns the absent price.
func NoPrice() Price {
	return Price{}
}

// Cents returns the amount and whether a price is present.
func (p Price) Cents() (int64, bool) {
	return p.cents, p.valid
}

// OrZero returns the amount, or 0 when absent.
func (p Price) OrZero() int64 {
	if !p.valid {
		return 0
	}
	return p.cents
}

// MarshalJSON encodes an absent price as null.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, p.cents, 10), nil
}

// UnmarshalJSON accepts null or a non-negative integer.
func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Price{}
		return nil
	}
	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	price, err := PriceOf(cents)
	if err != nil {
		return err
	}
	*p = price
	return nil
}
