package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCategoryOrOther(t *testing.T) {
	assert.Equal(t, CategoryOther, Category("").OrOther())
	assert.Equal(t, CategoryOther, Category("   ").OrOther())
	assert.Equal(t, Category("Dairy"), Category("Dairy").OrOther())
}

func TestTags(t *testing.T) {
	tags := NewTags("Oven", "", "Wok", "Oven", " Wok ")
	assert.Equal(t, Tags{"Oven", "Wok"}, tags)
	assert.True(t, tags.Contains("Wok"))
	assert.False(t, tags.Contains("Stove"))

	assert.NotNil(t, NewTags())
}

func TestNormalize(t *testing.T) {
	r := Recipe{ID: "1", Title: "Soup", Image: strPtr("  ")}
	n := r.Normalize()

	assert.NotNil(t, n.Tags)
	assert.NotNil(t, n.Ingredients)
	assert.NotNil(t, n.Steps)
	assert.Nil(t, n.Image)

	withImage := Recipe{ID: "1", Title: "Soup", Image: strPtr("file://soup.jpg")}.Normalize()
	require.NotNil(t, withImage.Image)
	assert.Equal(t, "file://soup.jpg", *withImage.Image)
}

func TestCloneIsDeep(t *testing.T) {
	r := Recipe{
		ID:          "1",
		Title:       "Soup",
		Tags:        Tags{"Oven"},
		Ingredients: []Ingredient{{Name: "Leek"}},
		Steps:       []string{"Boil"},
	}
	c := r.Clone()
	c.Tags[0] = "Wok"
	c.Ingredients[0].Name = "Onion"
	c.Steps[0] = "Fry"

	assert.Equal(t, "Oven", r.Tags[0])
	assert.Equal(t, "Leek", r.Ingredients[0].Name)
	assert.Equal(t, "Boil", r.Steps[0])
}

func TestWithDefaults(t *testing.T) {
	img := " "
	r := Recipe{ID: "1", Title: "Soup", Image: &img, Tags: Tags{"Oven", "Oven"}}
	d := r.WithDefaults()

	assert.Equal(t, Tags{"Oven", "Oven"}, d.Tags)
	require.NotNil(t, d.Image)
	assert.Equal(t, " ", *d.Image)
	assert.NotSame(t, r.Image, d.Image)
	assert.NotNil(t, d.Ingredients)
	assert.NotNil(t, d.Steps)
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Recipe{ID: "1", Title: "Tacos"}.Validate())
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		err := Recipe{ID: "1", Title: ""}.Validate()
		assert.True(t, errors.Is(err, ErrInvalidRecipe))
	})

	t.Run("BlankTitle", func(t *testing.T) {
		err := Recipe{ID: "1", Title: "   "}.Validate()
		assert.True(t, errors.Is(err, ErrInvalidRecipe))
	})

	t.Run("MissingID", func(t *testing.T) {
		err := Recipe{Title: "Tacos"}.Validate()
		assert.True(t, errors.Is(err, ErrInvalidRecipe))
	})
}

func TestExtractEquipment(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		steps     string
		wantTitle string
		wantTags  Tags
	}{
		{"title keyword", "Slow Cooker Chili", "Brown the beef.", "Chili", Tags{"Slow Cooker"}},
		{"case insensitive", "air fryer wings", "", "wings", Tags{"Air Fryer"}},
		{"steps only", "Roast Chicken", "Preheat the oven to 200C.", "Roast Chicken", Tags{"Oven"}},
		{"multiple", "Wok Noodles", "Finish in the oven", "Noodles", Tags{"Oven", "Wok"}},
		{"word boundary", "Stovetop Popcorn", "", "Stovetop Popcorn", Tags{}},
		{"none", "Salad", "Toss.", "Salad", Tags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, tags := ExtractEquipment(tt.title, tt.steps)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestManualInputBuild(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		in := ManualInput{
			Title:       "Instant Pot Risotto",
			PrepTime:    "30 mins",
			Servings:    "4",
			Ingredients: "Rice\n\n  Stock  \nParmesan",
			Steps:       "Saute\n\nPressure cook",
		}

		r, err := in.Build("local-1")
		require.NoError(t, err)

		assert.Equal(t, "local-1", r.ID)
		assert.Equal(t, "Risotto", r.Title)
		assert.Equal(t, Tags{"Instant Pot"}, r.Tags)
		assert.Equal(t, []Ingredient{
			{Name: "Rice", Category: CategoryOther},
			{Name: "Stock", Category: CategoryOther},
			{Name: "Parmesan", Category: CategoryOther},
		}, r.Ingredients)
		assert.Equal(t, []string{"Saute", "Pressure cook"}, r.Steps)
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		_, err := ManualInput{Title: "  "}.Build("local-1")
		assert.ErrorIs(t, err, ErrInvalidRecipe)
	})

	t.Run("TitleIsOnlyEquipment", func(t *testing.T) {
		r, err := ManualInput{Title: "Wok"}.Build("local-1")
		require.NoError(t, err)
		assert.Equal(t, "Wok", r.Title)
		assert.Equal(t, Tags{"Wok"}, r.Tags)
	})

	t.Run("EmptySequences", func(t *testing.T) {
		r, err := ManualInput{Title: "Toast"}.Build("local-1")
		require.NoError(t, err)
		assert.Equal(t, []Ingredient{}, r.Ingredients)
		assert.Equal(t, []string{}, r.Steps)
	})
}

func TestSearch(t *testing.T) {
	recipes := []Recipe{
		{ID: "1", Title: "Chicken Curry", Tags: Tags{"Slow Cooker"}},
		{ID: "2", Title: "Tacos", Ingredients: []Ingredient{{Name: "Tortillas"}}},
		{ID: "3", Title: "Beef Stew", Tags: Tags{"Oven"}},
	}

	ids := func(rs []Recipe) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(Search(recipes, "")))
	assert.Equal(t, []string{"1"}, ids(Search(recipes, "curry")))
	assert.Equal(t, []string{"1"}, ids(Search(recipes, "slow")))
	assert.Equal(t, []string{"2"}, ids(Search(recipes, "TORTILLA")))
	assert.Equal(t, []string{"3"}, ids(Search(recipes, "oven")))
	assert.Equal(t, []string{"1"}, ids(Search(recipes, "chkn")))
	assert.Empty(t, Search(recipes, "zzzz"))
}
