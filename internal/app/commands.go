package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"easydish/internal/identity"
	"easydish/internal/importer"
	"easydish/internal/metrics"
	"easydish/internal/recipe"
	"easydish/internal/shopping"
	"easydish/internal/store"
	"easydish/internal/syncer"
)

// ListRecipes prints the recipes matching query, or all of them.
func (a *App) ListRecipes(query string) {
	recipes := recipe.Search(a.store.Recipes(), query)
	if len(recipes) == 0 {
		fmt.Fprintln(a.out, "No recipes.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTAGS\tINGREDIENTS")
	for _, r := range recipes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", r.ID, r.Title, strings.Join(r.Tags, ", "), len(r.Ingredients))
	}
	w.Flush()
}

// AddRecipe builds a recipe from manual input and adds it.
func (a *App) AddRecipe(ctx context.Context, in recipe.ManualInput) (recipe.Recipe, error) {
	r, err := in.Build(identity.NewLocalID())
	if err != nil {
		return recipe.Recipe{}, err
	}
	return a.add(ctx, r)
}

// ImportRecipe formats text, or the page at url, with the AI provider and
// adds the result.
func (a *App) ImportRecipe(ctx context.Context, text, url string) (recipe.Recipe, error) {
	if a.importer == nil {
		return recipe.Recipe{}, fmt.Errorf("%w: no AI provider configured", importer.ErrFormatFailed)
	}

	var (
		res importer.Result
		err error
	)
	if url != "" {
		res, err = a.importer.FromURL(ctx, url)
	} else {
		res, err = a.importer.FromText(ctx, text)
	}
	if err != nil {
		return recipe.Recipe{}, err
	}

	if a.metrics != nil {
		if err := a.metrics.RecordUsage(ctx, "import.format", res.Usage, res.Latency); err != nil {
			a.logger.Warn("failed to record metrics", slog.String("error", err.Error()))
		}
	}
	return a.add(ctx, res.Recipe)
}

func (a *App) add(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	p, err := a.store.AddRecipe(ctx, r)
	if err != nil {
		return recipe.Recipe{}, err
	}
	outcome, err := p.Wait(ctx)
	if err != nil {
		return recipe.Recipe{}, err
	}

	stored, ok := a.store.Recipe(p.ID())
	if !ok {
		// Deleted again before the sync settled.
		stored = r
	}
	fmt.Fprintf(a.out, "Added %q (%s, %s).\n", stored.Title, stored.ID, describe(outcome))
	return stored, nil
}

// DeleteRecipe removes a recipe locally and, when possible, remotely.
func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	if _, ok := a.store.Recipe(id); !ok {
		fmt.Fprintf(a.out, "No recipe with id %s.\n", id)
		return nil
	}
	outcome, err := a.store.DeleteRecipe(ctx, id).Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s (%s).\n", id, describe(outcome))
	return nil
}

// FetchRecipes pulls the signed-in user's recipes.
func (a *App) FetchRecipes(ctx context.Context) error {
	switch a.store.FetchRecipes(ctx) {
	case syncer.Skipped:
		fmt.Fprintln(a.out, "Not signed in; nothing fetched.")
	case syncer.Failed:
		fmt.Fprintln(a.out, "Remote store unavailable; kept local recipes.")
	default:
		fmt.Fprintf(a.out, "Fetched. %d recipes.\n", len(a.store.Recipes()))
	}
	return nil
}

// ShopAdd pushes a recipe's ingredients onto the shopping list.
func (a *App) ShopAdd(recipeID string) error {
	r, ok := a.store.Recipe(recipeID)
	if !ok {
		return fmt.Errorf("no recipe with id %s", recipeID)
	}
	n := a.store.AddToShoppingList(r)
	fmt.Fprintf(a.out, "Added %d items from %q.\n", n, r.Title)
	return nil
}

// ShopList prints the shopping list grouped by category with totals.
func (a *App) ShopList() {
	summary := a.store.Summary()
	if len(summary.Groups) == 0 {
		fmt.Fprintln(a.out, "Shopping list is empty.")
		return
	}

	for _, g := range summary.Groups {
		fmt.Fprintf(a.out, "%s (%d)\n", g.Category, g.Count)
		for _, item := range g.Items {
			fmt.Fprintf(a.out, "  %s %s", checkbox(item.Completed), item.Name)
			if item.Amount != "" {
				fmt.Fprintf(a.out, " - %s", item.Amount)
			}
			if cents, ok := item.Price.Cents(); ok {
				fmt.Fprintf(a.out, " $%s", shopping.FormatCents(cents))
			}
			fmt.Fprintf(a.out, "  [%s]\n", item.ID)
		}
	}
	if len(summary.SourceRecipes) > 0 {
		fmt.Fprintf(a.out, "From: %s\n", strings.Join(summary.SourceRecipes, ", "))
	}
	fmt.Fprintf(a.out, "Total: $%s  Remaining: $%s\n", summary.Totals.Grand(), summary.Totals.Remaining())
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// ShopToggle flips an item's completed flag.
func (a *App) ShopToggle(id string) {
	if !a.store.ToggleShoppingItem(id) {
		fmt.Fprintf(a.out, "No item with id %s.\n", id)
	}
}

// ShopClear empties the list, or only its completed items.
func (a *App) ShopClear(completedOnly bool) {
	if completedOnly {
		fmt.Fprintf(a.out, "Removed %d completed items.\n", a.store.ClearCompleted())
		return
	}
	a.store.ClearShoppingList()
	fmt.Fprintln(a.out, "Shopping list cleared.")
}

// ShopRemoveRecipe removes every item that came from the recipe titled title.
func (a *App) ShopRemoveRecipe(title string) {
	fmt.Fprintf(a.out, "Removed %d items from %q.\n", a.store.RemoveRecipeFromShoppingList(title), title)
}

// ShopMatch enriches the list from the product catalog.
func (a *App) ShopMatch(ctx context.Context) error {
	n, err := a.store.MatchShoppingItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to match shopping items: %w", err)
	}
	fmt.Fprintf(a.out, "Matched %d items.\n", n)
	return nil
}

// Login signs in with an access token.
func (a *App) Login(ctx context.Context, token string) error {
	if a.session == nil {
		return ErrRemoteDisabled
	}
	u, err := a.session.SignIn(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", displayName(u.Email, u.ID))
	return nil
}

// Logout forgets the session. Local recipes stay.
func (a *App) Logout(ctx context.Context) error {
	if a.session == nil {
		return ErrRemoteDisabled
	}
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func displayName(email, id string) string {
	if email != "" {
		return email
	}
	return id
}

// SetPreferences updates the preferences that were given.
func (a *App) SetPreferences(darkMode *bool, units string) error {
	if units != "" {
		if err := a.store.SetUnitSystem(store.UnitSystem(strings.ToLower(units))); err != nil {
			return fmt.Errorf("%w: %q", err, units)
		}
	}
	if darkMode != nil {
		a.store.SetDarkMode(*darkMode)
	}

	prefs := a.store.State().Preferences
	fmt.Fprintf(a.out, "Dark mode: %t, units: %s\n", prefs.DarkMode, prefs.UnitSystem)
	return nil
}

// Status prints local health and recent AI usage.
func (a *App) Status(ctx context.Context) error {
	st := a.store.State()
	h := metrics.GetSysHealth(a.cfg.DataDir)

	user := "signed out"
	if st.User != nil {
		user = displayName(st.User.Email, st.User.ID)
	}
	fmt.Fprintf(a.out, "User: %s\nRecipes: %d  Shopping items: %d\n", user, len(st.Recipes), len(st.ShoppingList))
	fmt.Fprintf(a.out, "Data: %s  Memory: %d MB  Goroutines: %d\n", h.DataDiskSize, h.AllocMB, h.Goroutines)

	if a.metrics == nil {
		return nil
	}
	usage, err := a.metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		return err
	}
	for _, u := range usage {
		fmt.Fprintf(a.out, "%s  imports: %d  tokens: %d/%d\n", u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion)
	}
	return nil
}

// CleanupMetrics removes metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	if a.metrics == nil {
		return nil
	}
	n, err := a.metrics.Cleanup(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %d metric records older than %d days.\n", n, days)
	return nil
}

func describe(o syncer.Outcome) string {
	switch o {
	case syncer.Synced:
		return "synced"
	case syncer.Failed:
		return "saved locally, remote unavailable"
	default:
		return "saved locally"
	}
}

// waitTimeout bounds how long a command waits for background work on exit.
const waitTimeout = 30 * time.Second

// Run starts the app, runs fn and waits for pending work before closing.
func (a *App) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		_ = a.Close(ctx)
		return err
	}

	runErr := fn(ctx)

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), waitTimeout)
	defer cancel()
	if err := a.Close(waitCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
