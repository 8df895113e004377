package shopping

import (
	"cmp"
	"fmt"
	"slices"

	"easydish/internal/recipe"
)

// Group is the set of items sharing a category.
type Group struct {
	Category recipe.Category
	Items    []Item
	Count    int
}

// GroupByCategory partitions items by category, treating a blank category as
// "Other". Groups are sorted by category name; items keep their list order.
func GroupByCategory(items []Item) []Group {
	index := make(map[recipe.Category]int)
	var groups []Group
	for _, item := range items {
		cat := item.Category.OrOther()
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, Group{Category: cat})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Count++
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return groups
}

// DistinctSourceRecipes returns the unique non-empty source recipe titles,
// sorted so the result is stable.
func DistinctSourceRecipes(items []Item) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		if item.SourceRecipe == "" {
			continue
		}
		if _, ok := seen[item.SourceRecipe]; ok {
			continue
		}
		seen[item.SourceRecipe] = struct{}{}
		out = append(out, item.SourceRecipe)
	}
	slices.Sort(out)
	return out
}

// Totals are running sums in minor currency units.
type Totals struct {
	GrandCents     int64
	RemainingCents int64
}

// ComputeTotals sums prices over all items, and over unchecked items only.
// Absent prices count as zero.
func ComputeTotals(items []Item) Totals {
	var t Totals
	for _, item := range items {
		cents := item.Price.OrZero()
		t.GrandCents += cents
		if !item.Completed {
			t.RemainingCents += cents
		}
	}
	return t
}

// Grand formats the grand total for display.
func (t Totals) Grand() string { return FormatCents(t.GrandCents) }

// Remaining formats the remaining total for display.
func (t Totals) Remaining() string { return FormatCents(t.RemainingCents) }

// FormatCents renders cents in major units with two decimals, e.g. 549 -> "5.49".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Summary bundles every derivation the list view shows.
type Summary struct {
	Groups        []Group
	SourceRecipes []string
	Totals        Totals
}

// Summarize recomputes all derivations over items.
func Summarize(items []Item) Summary {
	return Summary{
		Groups:        GroupByCategory(items),
		SourceRecipes: DistinctSourceRecipes(items),
		Totals:        ComputeTotals(items),
	}
}
