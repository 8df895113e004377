package remote

import (
	"strings"

	"easydish/internal/identity"
	"easydish/internal/recipe"
)

// ToRemoteRow maps a local recipe to a row owned by ownerID. The id is only
// carried over when it is remote-eligible; otherwise the store assigns one.
func ToRemoteRow(r recipe.Recipe, ownerID string) Row {
	row := Row{
		UserID:      ownerID,
		Title:       r.Title,
		PrepTime:    r.PrepTime,
		Servings:    r.Servings,
		Tags:        []string(recipe.NewTags(r.Tags...)),
		Ingredients: orEmpty(r.Ingredients),
		Steps:       orEmpty(r.Steps),
	}
	row.ImageURL = imageRef(r.Image)
	if identity.IsRemoteEligible(r.ID) {
		row.ID = r.ID
	}
	return row
}

// FromRemoteRow validates row and maps it to a local recipe. Missing tags,
// ingredients and steps become empty sequences and a blank image_url becomes nil.
func FromRemoteRow(row Row) (recipe.Recipe, error) {
	if err := row.Validate(); err != nil {
		return recipe.Recipe{}, err
	}

	r := recipe.Recipe{
		ID:          row.ID,
		Title:       row.Title,
		PrepTime:    row.PrepTime,
		Servings:    row.Servings,
		Tags:        recipe.NewTags(row.Tags...),
		Ingredients: orEmpty(row.Ingredients),
		Steps:       orEmpty(row.Steps),
	}
	r.Image = imageRef(row.ImageURL)
	return r, nil
}

// imageRef copies an image reference. A blank one means "no image".
func imageRef(img *string) *string {
	if img == nil || strings.TrimSpace(*img) == "" {
		return nil
	}
	out := *img
	return &out
}

// FromRemoteRows maps every row, failing on the first malformed one.
func FromRemoteRows(rows []Row) ([]recipe.Recipe, error) {
	out := make([]recipe.Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := FromRemoteRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func orEmpty[T any](s []T) []T {
	return append([]T{}, s...)
}
