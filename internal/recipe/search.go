package recipe

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// titles adapts a recipe slice to fuzzy.Source.
type titles []Recipe

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

// Search filters recipes by a case-insensitive substring of the title, any tag
// or any ingredient name, keeping the input order. Titles that only match
// fuzzily (typos, dropped letters) follow, best match first. An empty query
// returns every recipe.
func Search(recipes []Recipe, query string) []Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Recipe{}, recipes...)
	}

	out := []Recipe{}
	hit := make(map[int]struct{})
	for i, r := range recipes {
		if r.matches(q) {
			out = append(out, r)
			hit[i] = struct{}{}
		}
	}

	for _, m := range fuzzy.FindFrom(q, titles(recipes)) {
		if _, ok := hit[m.Index]; ok {
			continue
		}
		hit[m.Index] = struct{}{}
		out = append(out, recipes[m.Index])
	}
	return out
}

func (r Recipe) matches(q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), q) {
			return true
		}
	}
	return false
}
