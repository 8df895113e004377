// Package syncer reconciles local recipe mutations with the remote store.
//
// Every remote call is best-effort: a failure is logged and reported as an
// Outcome, never returned as an error the caller has to handle, so the local
// copy always stays usable.
package syncer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"easydish/internal/identity"
	"easydish/internal/recipe"
	"easydish/internal/remote"
)

// Outcome describes what happened to the remote leg of an operation.
type Outcome int

const (
	// Skipped means no remote call was made: no user, no remote store, or an
	// id the remote store cannot address.
	Skipped Outcome = iota
	// Synced means the remote store confirmed the change.
	Synced
	// Failed means the remote call was attempted and did not succeed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Synced:
		return "synced"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Engine runs the remote side of recipe operations.
type Engine struct {
	remote  remote.RecipeStore
	logger  *slog.Logger
	fetches singleflight.Group
}

// New creates an engine. A nil store makes every operation local-only.
func New(store remote.RecipeStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{remote: store, logger: logger}
}

// Enabled reports whether a remote store is configured.
func (e *Engine) Enabled() bool {
	return e != nil && e.remote != nil
}

// SaveRecipe upserts r for userID and returns the value that should be
// committed locally: the stored row on success, r itself otherwise.
func (e *Engine) SaveRecipe(ctx context.Context, userID string, r recipe.Recipe) (recipe.Recipe, Outcome) {
	if !e.Enabled() || userID == "" {
		return r, Skipped
	}

	stored, err := e.remote.UpsertRecipe(ctx, remote.ToRemoteRow(r, userID))
	if err != nil {
		e.warn("save", r.ID, err)
		return r, Failed
	}

	out, err := remote.FromRemoteRow(stored)
	if err != nil {
		e.warn("save", r.ID, err)
		return r, Failed
	}

	e.logger.Debug("recipe synced",
		slog.String("op", "save"),
		slog.String("local_id", r.ID),
		slog.String("recipe_id", out.ID),
	)
	return out, Synced
}

// DeleteRecipe removes id for userID when the id is remote-addressable.
func (e *Engine) DeleteRecipe(ctx context.Context, userID, id string) Outcome {
	if !e.Enabled() || userID == "" || !identity.IsRemoteEligible(id) {
		return Skipped
	}

	if err := e.remote.DeleteRecipe(ctx, id, userID); err != nil {
		e.warn("delete", id, err)
		return Failed
	}
	return Synced
}

// FetchRecipes returns the user's remote recipes, newest first. Concurrent
// calls for the same user share one request. A malformed row fails the whole
// fetch.
func (e *Engine) FetchRecipes(ctx context.Context, userID string) ([]recipe.Recipe, Outcome) {
	if !e.Enabled() || userID == "" {
		return nil, Skipped
	}

	v, err, _ := e.fetches.Do(userID, func() (interface{}, error) {
		rows, err := e.remote.ListRecipes(ctx, userID)
		if err != nil {
			return nil, err
		}
		return remote.FromRemoteRows(rows)
	})
	if err != nil {
		e.warn("fetch", "", err)
		return nil, Failed
	}
	return v.([]recipe.Recipe), Synced
}

func (e *Engine) warn(op, id string, err error) {
	attrs := []any{slog.String("op", op), slog.String("error", err.Error())}
	if id != "" {
		attrs = append(attrs, slog.String("recipe_id", id))
	}
	e.logger.Warn("remote sync failed", attrs...)
}
