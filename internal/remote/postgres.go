package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"easydish/internal/recipe"
)

const (
	// DefaultCatalogFunction is the SQL function used for product matching.
	DefaultCatalogFunction = "match_aldi_product"

	recipeColumns = `id::text, user_id::text, coalesce(title, ''), coalesce(prep_time, ''),
		coalesce(servings, ''), image_url, coalesce(tags, '{}'), ingredients, steps, created_at`
)

// Postgres talks to the remote store directly over the Postgres wire protocol.
type Postgres struct {
	pool            *pgxpool.Pool
	catalogFunction string
	logger          *slog.Logger
}

// Ensure Postgres implements both boundaries.
var (
	_ RecipeStore    = (*Postgres)(nil)
	_ CatalogMatcher = (*Postgres)(nil)
)

// NewPostgres opens a connection pool to databaseURL and verifies it.
func NewPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to remote store: %w", err)
	}

	return &Postgres{
		pool:            pool,
		catalogFunction: DefaultCatalogFunction,
		logger:          logger,
	}, nil
}

// WithCatalogFunction overrides the SQL function used by MatchProduct.
func (p *Postgres) WithCatalogFunction(name string) *Postgres {
	if name != "" {
		p.catalogFunction = pgx.Identifier{name}.Sanitize()
	}
	return p
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// UpsertRecipe inserts row or, when it carries an id, updates the existing row
// with that id. Updates only apply to rows owned by row.UserID.
func (p *Postgres) UpsertRecipe(ctx context.Context, row Row) (Row, error) {
	ingredients, err := json.Marshal(orEmpty(row.Ingredients))
	if err != nil {
		return Row{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	steps, err := json.Marshal(orEmpty(row.Steps))
	if err != nil {
		return Row{}, fmt.Errorf("failed to marshal steps: %w", err)
	}
	tags := orEmpty(row.Tags)

	var result pgx.Row
	if row.HasID() {
		result = p.pool.QueryRow(ctx, `
			INSERT INTO recipes (id, user_id, title, prep_time, servings, image_url, tags, ingredients, steps)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				prep_time = EXCLUDED.prep_time,
				servings = EXCLUDED.servings,
				image_url = EXCLUDED.image_url,
				tags = EXCLUDED.tags,
				ingredients = EXCLUDED.ingredients,
				steps = EXCLUDED.steps
			WHERE recipes.user_id = EXCLUDED.user_id
			RETURNING `+recipeColumns,
			row.ID, row.UserID, row.Title, row.PrepTime, row.Servings, row.ImageURL, tags, ingredients, steps)
	} else {
		result = p.pool.QueryRow(ctx, `
			INSERT INTO recipes (user_id, title, prep_time, servings, image_url, tags, ingredients, steps)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+recipeColumns,
			row.UserID, row.Title, row.PrepTime, row.Servings, row.ImageURL, tags, ingredients, steps)
	}

	stored, err := scanRow(result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Row{}, fmt.Errorf("failed to upsert recipe %s: owned by another user", row.ID)
		}
		return Row{}, fmt.Errorf("failed to upsert recipe: %w", err)
	}
	return stored, nil
}

// ListRecipes returns every row owned by userID ordered by created_at, newest first.
func (p *Postgres) ListRecipes(ctx context.Context, userID string) ([]Row, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (Row, error) {
		return scanRow(r)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}
	return out, nil
}

// DeleteRecipe deletes the row matching both id and userID.
func (p *Postgres) DeleteRecipe(ctx context.Context, id, userID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		p.logger.Debug("remote delete matched no rows", slog.String("recipe_id", id))
	}
	return nil
}

// MatchProduct calls the catalog search function and returns its best hit.
func (p *Postgres) MatchProduct(ctx context.Context, term string) (*Product, error) {
	var prod Product
	err := p.pool.QueryRow(ctx, `
		SELECT id::bigint, coalesce(sku, ''), coalesce(name, ''), category_name, price_amount::bigint
		FROM `+p.catalogFunction+`($1)
		LIMIT 1`, term).
		Scan(&prod.ID, &prod.SKU, &prod.Name, &prod.CategoryName, &prod.PriceAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to match product %q: %w", term, err)
	}
	return &prod, nil
}

// scanRow reads one recipe row and decodes its JSON columns.
func scanRow(s pgx.Row) (Row, error) {
	var (
		row         Row
		ingredients []byte
		steps       []byte
	)
	err := s.Scan(&row.ID, &row.UserID, &row.Title, &row.PrepTime, &row.Servings,
		&row.ImageURL, &row.Tags, &ingredients, &steps, &row.CreatedAt)
	if err != nil {
		return Row{}, err
	}

	if row.Ingredients, err = decodeList[recipe.Ingredient](ingredients, "ingredients"); err != nil {
		return Row{}, err
	}
	if row.Steps, err = decodeList[string](steps, "steps"); err != nil {
		return Row{}, err
	}
	return row, nil
}

// decodeList decodes a JSON array column. SQL NULL and JSON null decode to an
// empty list; anything that is not an array of T is a malformed row.
func decodeList[T any](raw []byte, column string) ([]T, error) {
	out := []T{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, column, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
