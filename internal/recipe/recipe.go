package recipe

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidRecipe is returned when a recipe fails validation. Callers treat
// it as a no-op: nothing is mutated.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Category is a shopping aisle label. The zero value means "unspecified".
type Category string

// CategoryOther is used wherever a category is unspecified.
const CategoryOther Category = "Other"

// OrOther returns c, or CategoryOther when c is blank.
func (c Category) OrOther() Category {
	if strings.TrimSpace(string(c)) == "" {
		return CategoryOther
	}
	return c
}

// Ingredient is a single line of a recipe. It has no identity of its own.
type Ingredient struct {
	Name     string   `json:"name"`
	Amount   string   `json:"amount"`
	Category Category `json:"category"`
}

// Recipe is the local representation of a recipe.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	PrepTime    string       `json:"prepTime"`
	Servings    string       `json:"servings"`
	Image       *string      `json:"image"`
	Tags        Tags         `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
}

// Normalize returns a deep copy of r with nil sequences replaced by empty ones,
// duplicate tags collapsed and a blank image reference cleared.
func (r Recipe) Normalize() Recipe {
	out := r
	out.Tags = NewTags(r.Tags...)
	out.Ingredients = append([]Ingredient{}, r.Ingredients...)
	out.Steps = append([]string{}, r.Steps...)
	if r.Image != nil {
		if strings.TrimSpace(*r.Image) == "" {
			out.Image = nil
		} else {
			img := *r.Image
			out.Image = &img
		}
	}
	return out
}

// WithDefaults returns a deep copy of r with nil sequences replaced by empty
// ones. Nothing else is changed.
func (r Recipe) WithDefaults() Recipe {
	out := r.Clone()
	if out.Tags == nil {
		out.Tags = Tags{}
	}
	if out.Ingredients == nil {
		out.Ingredients = []Ingredient{}
	}
	if out.Steps == nil {
		out.Steps = []string{}
	}
	return out
}

// Clone returns a deep copy of r, preserving nil-ness of its sequences.
func (r Recipe) Clone() Recipe {
	out := r
	out.Tags = slices.Clone(r.Tags)
	out.Ingredients = slices.Clone(r.Ingredients)
	out.Steps = slices.Clone(r.Steps)
	if r.Image != nil {
		img := *r.Image
		out.Image = &img
	}
	return out
}

// Validate checks the fields every stored recipe must carry.
func (r Recipe) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.By(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	return nil
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// Tags is an insertion-ordered set of equipment tags.
type Tags []string

// NewTags builds a tag set from values, dropping blanks and later duplicates.
// The result is never nil.
func NewTags(values ...string) Tags {
	out := make(Tags, 0, len(values))
	for _, v := range values {
		out = out.Add(v)
	}
	return out
}

// Add appends tag unless it is blank or already present.
func (t Tags) Add(tag string) Tags {
	tag = strings.TrimSpace(tag)
	if tag == "" || t.Contains(tag) {
		return t
	}
	return append(t, tag)
}

// Contains reports whether tag is in the set.
func (t Tags) Contains(tag string) bool {
	return slices.Contains(t, tag)
}
