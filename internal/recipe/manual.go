package recipe

import "strings"

// ManualInput is what a user types into the manual entry form. Ingredients
// and Steps hold one entry per line.
type ManualInput struct {
	Title       string
	PrepTime    string
	Servings    string
	Ingredients string
	Steps       string
	Image       *string
}

// Build turns the form into a Recipe with the given id. Equipment mentioned in
// the title or steps becomes tags; ingredients get an empty amount and the
// Other category.
func (in ManualInput) Build(id string) (Recipe, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Recipe{}, ErrInvalidRecipe
	}

	title, tags := ExtractEquipment(in.Title, in.Steps)
	if title == "" {
		title = strings.TrimSpace(in.Title)
	}

	ingredients := []Ingredient{}
	for _, line := range splitLines(in.Ingredients) {
		ingredients = append(ingredients, Ingredient{Name: line, Category: CategoryOther})
	}

	r := Recipe{
		ID:          id,
		Title:       title,
		PrepTime:    strings.TrimSpace(in.PrepTime),
		Servings:    strings.TrimSpace(in.Servings),
		Image:       in.Image,
		Tags:        tags,
		Ingredients: ingredients,
		Steps:       splitLines(in.Steps),
	}
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// splitLines returns the trimmed, non-blank lines of s. Never nil.
func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
