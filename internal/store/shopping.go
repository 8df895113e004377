package store

import (
	"slices"

	"easydish/internal/recipe"
	"easydish/internal/shopping"
)

// AddToShoppingList appends one unchecked item per ingredient of r and returns
// how many were added. Existing items with the same name are left alone.
func (s *Store) AddToShoppingList(r recipe.Recipe) int {
	items := shopping.FromIngredients(r, s.ids.NewID)
	if len(items) == 0 {
		return 0
	}
	s.mutate(func() bool {
		s.items = append(s.items, items...)
		return true
	})
	return len(items)
}

// ToggleShoppingItem flips the completed flag of the item with id. It reports
// whether such an item exists.
func (s *Store) ToggleShoppingItem(id string) bool {
	return s.mutate(func() bool {
		i := slices.IndexFunc(s.items, func(item shopping.Item) bool { return item.ID == id })
		if i < 0 {
			return false
		}
		s.items[i].Completed = !s.items[i].Completed
		return true
	})
}

// ClearShoppingList removes every item.
func (s *Store) ClearShoppingList() {
	s.mutate(func() bool {
		s.items = []shopping.Item{}
		return true
	})
}

// ClearCompleted removes checked items and returns how many were removed.
func (s *Store) ClearCompleted() int {
	return s.removeItems(func(item shopping.Item) bool { return item.Completed })
}

// RemoveRecipeFromShoppingList removes every item that came from the recipe
// titled title, checked or not, and returns how many were removed.
func (s *Store) RemoveRecipeFromShoppingList(title string) int {
	return s.removeItems(func(item shopping.Item) bool { return item.SourceRecipe == title })
}

func (s *Store) removeItems(match func(shopping.Item) bool) int {
	var removed int
	s.mutate(func() bool {
		before := len(s.items)
		s.items = slices.DeleteFunc(s.items, match)
		removed = before - len(s.items)
		return removed > 0
	})
	return removed
}

// SetDarkMode sets the dark mode preference.
func (s *Store) SetDarkMode(enabled bool) {
	s.mutate(func() bool {
		s.prefs.DarkMode = enabled
		return true
	})
}

// SetUnitSystem sets the unit system preference.
func (s *Store) SetUnitSystem(u UnitSystem) error {
	if !u.Valid() {
		return ErrInvalidUnitSystem
	}
	s.mutate(func() bool {
		s.prefs.UnitSystem = u
		return true
	})
	return nil
}
