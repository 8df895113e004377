package store

import (
	"context"
	"log/slog"
	"slices"

	"easydish/internal/auth"
	"easydish/internal/identity"
	"easydish/internal/recipe"
	"easydish/internal/syncer"
)

type placement int

const (
	prepend placement = iota
	inPlace
)

// AddRecipe stores r at the top of the list and, when a user is signed in,
// upserts it remotely. If the remote store answers, its row replaces the
// local entry. A recipe without an id gets a local one. Apart from that and
// nil sequences becoming empty, r is stored as given.
//
// Only validation errors are returned; nothing is changed in that case.
func (s *Store) AddRecipe(ctx context.Context, r recipe.Recipe) (*Pending, error) {
	r = r.WithDefaults()
	if r.ID == "" {
		r.ID = s.ids.NewID()
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		tok  syncer.Token
		user *auth.User
	)
	s.mutate(func() bool {
		tok = s.pending.Begin(r.ID)
		user = s.user
		s.placeLocked(r.ID, r, prepend)
		s.touchLocked(r.ID)
		return true
	})

	return s.syncSave(ctx, tok, user, r, prepend), nil
}

// UpdateRecipe replaces the entry with r.ID in place and syncs it the same
// way AddRecipe does. Updating an unknown id is a no-op.
func (s *Store) UpdateRecipe(ctx context.Context, r recipe.Recipe) (*Pending, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		tok   syncer.Token
		user  *auth.User
		found bool
	)
	s.mutate(func() bool {
		i := s.indexOfRecipe(r.ID)
		if i < 0 {
			return false
		}
		found = true
		tok = s.pending.Begin(r.ID)
		user = s.user
		s.recipes[i] = r
		s.touchLocked(r.ID)
		return true
	})
	if !found {
		return settled(r.ID, syncer.Skipped), nil
	}

	return s.syncSave(ctx, tok, user, r, inPlace), nil
}

func (s *Store) syncSave(ctx context.Context, tok syncer.Token, user *auth.User, r recipe.Recipe, at placement) *Pending {
	if user == nil || !s.engine.Enabled() {
		s.pending.Finish(tok)
		return settled(r.ID, syncer.Skipped)
	}

	p := newPending()
	ctx = context.WithoutCancel(ctx)
	s.goAsync(func() {
		result, outcome := s.engine.SaveRecipe(ctx, user.ID, r)
		id := s.commitSave(ctx, tok, user, r.ID, result, outcome, at)
		p.finish(id, outcome)
	})
	return p
}

// commitSave applies the authoritative result of a save, unless a newer local
// operation on the same id started in the meantime. It returns the id the
// recipe carries afterwards.
func (s *Store) commitSave(ctx context.Context, tok syncer.Token, user *auth.User, localID string, result recipe.Recipe, outcome syncer.Outcome, at placement) string {
	var (
		orphan bool
		id     = localID
	)
	s.mutate(func() bool {
		defer s.pending.Finish(tok)

		if !s.pending.Current(tok) {
			s.logger.Debug("discarding stale sync result", slog.String("recipe_id", localID))
			// The insert created a row that nothing local refers to: the
			// recipe was deleted meanwhile, or it still carries its local id
			// and the newer operation inserts it again.
			orphan = outcome == syncer.Synced && result.ID != localID
			return false
		}
		if outcome != syncer.Synced {
			return false
		}
		s.placeLocked(localID, result, at)
		s.touchLocked(localID, result.ID)
		id = result.ID
		return true
	})

	if orphan {
		s.engine.DeleteRecipe(ctx, user.ID, result.ID)
	}
	return id
}

// placeLocked puts r where the entry localID was, or at the top. Any other
// entry carrying r.ID is dropped so ids stay unique.
func (s *Store) placeLocked(localID string, r recipe.Recipe, at placement) {
	i := s.indexOfRecipe(localID)
	if at == inPlace && i >= 0 {
		out := make([]recipe.Recipe, 0, len(s.recipes))
		for j, x := range s.recipes {
			switch {
			case j == i:
				out = append(out, r)
			case x.ID != r.ID:
				out = append(out, x)
			}
		}
		s.recipes = out
		return
	}

	s.recipes = slices.DeleteFunc(s.recipes, func(x recipe.Recipe) bool {
		return x.ID == localID || x.ID == r.ID
	})
	s.recipes = append([]recipe.Recipe{r}, s.recipes...)
}

// DeleteRecipe removes id from the list immediately. When a user is signed in
// and the id is remote-eligible, the row is also deleted remotely for that
// user; a remote failure is logged and not rolled back.
func (s *Store) DeleteRecipe(ctx context.Context, id string) *Pending {
	var (
		tok  syncer.Token
		user *auth.User
	)
	s.mutate(func() bool {
		tok = s.pending.Begin(id)
		user = s.user
		before := len(s.recipes)
		s.recipes = slices.DeleteFunc(s.recipes, func(r recipe.Recipe) bool { return r.ID == id })
		s.touchLocked(id)
		return len(s.recipes) != before
	})

	if user == nil || !s.engine.Enabled() || !identity.IsRemoteEligible(id) {
		s.pending.Finish(tok)
		return settled(id, syncer.Skipped)
	}

	p := newPending()
	ctx = context.WithoutCancel(ctx)
	s.goAsync(func() {
		outcome := s.engine.DeleteRecipe(ctx, user.ID, id)
		s.pending.Finish(tok)
		p.finish(id, outcome)
	})
	return p
}

// FetchRecipes pulls the signed-in user's recipes and merges them into the
// list:
//   - local recipes that were never synced stay at the top in their order
//   - every other entry is replaced by the remote set, newest first
//   - a recipe added, changed or deleted locally since the fetch began, or
//     with a local operation still in flight, keeps its local copy, or stays
//     gone if it was deleted locally
//
// Without a user it does nothing.
func (s *Store) FetchRecipes(ctx context.Context) syncer.Outcome {
	user := s.User()
	if user == nil {
		return syncer.Skipped
	}

	s.mu.Lock()
	s.beginFetchLocked()
	s.mu.Unlock()

	fetched, outcome := s.engine.FetchRecipes(ctx, user.ID)
	if outcome != syncer.Synced {
		s.mu.Lock()
		s.endFetchLocked()
		s.mu.Unlock()
		return outcome
	}

	s.mutate(func() bool {
		defer s.endFetchLocked()
		// The user may have signed out or switched while the fetch ran.
		if s.user == nil || s.user.ID != user.ID {
			return false
		}
		s.recipes = s.mergeLocked(fetched)
		return true
	})
	return syncer.Synced
}

func (s *Store) mergeLocked(fetched []recipe.Recipe) []recipe.Recipe {
	remoteIDs := make(map[string]bool, len(fetched))
	for _, r := range fetched {
		remoteIDs[r.ID] = true
	}
	local := make(map[string]recipe.Recipe, len(s.recipes))
	for _, r := range s.recipes {
		local[r.ID] = r
	}

	merged := make([]recipe.Recipe, 0, len(s.recipes)+len(fetched))
	for _, r := range s.recipes {
		keep := !identity.IsRemoteEligible(r.ID) || (s.changedLocallyLocked(r.ID) && !remoteIDs[r.ID])
		if keep {
			merged = append(merged, r)
		}
	}
	for _, r := range fetched {
		if !s.changedLocallyLocked(r.ID) {
			merged = append(merged, r)
			continue
		}
		if mine, ok := local[r.ID]; ok {
			merged = append(merged, mine)
		}
	}
	return merged
}

// beginFetchLocked registers a fetch. Changes are tracked from the start of
// the oldest fetch in flight, since concurrent fetches may share one result.
func (s *Store) beginFetchLocked() {
	if s.fetching == 0 {
		s.fetchStart = s.gen
	}
	s.fetching++
}

func (s *Store) endFetchLocked() {
	s.fetching--
	if s.fetching == 0 {
		clear(s.touched)
	}
}

// touchLocked records a local change to ids while a fetch is in flight.
func (s *Store) touchLocked(ids ...string) {
	if s.fetching == 0 {
		return
	}
	s.gen++
	for _, id := range ids {
		s.touched[id] = s.gen
	}
}

// changedLocallyLocked reports whether id has an operation in flight or was
// changed after the oldest running fetch began.
func (s *Store) changedLocallyLocked(id string) bool {
	return s.pending.Active(id) || s.touched[id] > s.fetchStart
}

// SetUser replaces the signed-in user. Signing in starts a background fetch.
func (s *Store) SetUser(ctx context.Context, u *auth.User) {
	s.mutate(func() bool {
		s.user = u
		return true
	})
	if u == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.goAsync(func() {
		s.FetchRecipes(ctx)
	})
}
