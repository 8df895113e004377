package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easydish/internal/auth"
	"easydish/internal/config"
	"easydish/internal/identity"
	"easydish/internal/importer"
	"easydish/internal/llm"
	"easydish/internal/metrics"
	"easydish/internal/recipe"
	"easydish/internal/remote"
	"easydish/internal/storage"
	"easydish/internal/store"
	"easydish/internal/syncer"
	"easydish/internal/testutil"
)

const jwtSecret = "app-test-secret"

var bob = auth.User{ID: "6ba7b810-9dad-41d1-80b4-00c04fd430c8", Email: "bob@example.com"}

type stubGenerator struct {
	content string
	err     error
	calls   int
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ llm.Request) (llm.ContentResponse, error) {
	s.calls++
	if s.err != nil {
		return llm.ContentResponse{}, s.err
	}
	return llm.ContentResponse{
		Content: s.content,
		Usage:   llm.Usage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200, Model: "stub"},
	}, nil
}

type harness struct {
	app    *App
	out    *bytes.Buffer
	remote *testutil.FakeRemote
	kv     *storage.MemoryKV
	gen    *stubGenerator
	ver    *auth.Verifier
}

func newHarness(t *testing.T, withRemote bool) harness {
	t.Helper()
	logger := testutil.Logger()
	db := testutil.TestDB(t)

	h := harness{
		out:    &bytes.Buffer{},
		remote: testutil.NewFakeRemote(),
		kv:     storage.NewMemoryKV(),
		gen:    &stubGenerator{},
		ver:    auth.NewVerifier(jwtSecret),
	}

	opts := []store.Option{store.WithLogger(logger), store.WithKV(h.kv, store.DefaultKey)}
	var session *auth.Session
	if withRemote {
		enricher, err := store.NewEnricher(h.remote, 16, logger)
		require.NoError(t, err)
		opts = append(opts, store.WithSyncEngine(syncer.New(h.remote, logger)), store.WithEnricher(enricher))
		session = auth.NewSession(h.ver, h.kv, logger)
	}

	h.app = NewApp(Deps{
		Config:   testConfig(t),
		Logger:   logger,
		Out:      h.out,
		Store:    store.New(opts...),
		Session:  session,
		Importer: importer.New(importer.NewFormatter(h.gen, identity.NewFixedGenerator("imported-1")), nil),
		Metrics:  metrics.NewStore(db.SQL),
	})
	require.NoError(t, h.app.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.app.Close(ctx)
	})
	return h
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{DataDir: t.TempDir(), StorageBackend: config.BackendFile, StorageKey: store.DefaultKey}
}

func (h harness) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.app.Store().Wait(ctx))
}

func TestLocalWorkflow(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	r, err := h.app.AddRecipe(ctx, recipe.ManualInput{
		Title:       "Air Fryer Chicken Wings",
		Servings:    "2",
		Ingredients: "1kg wings\nsalt\n",
		Steps:       "Season\nCook 20 minutes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Chicken Wings", r.Title)
	assert.Equal(t, recipe.Tags{"Air Fryer"}, r.Tags)
	assert.False(t, identity.IsRemoteEligible(r.ID))
	assert.Contains(t, h.out.String(), "saved locally")

	_, err = h.app.AddRecipe(ctx, recipe.ManualInput{Title: "   "})
	assert.ErrorIs(t, err, recipe.ErrInvalidRecipe)
	assert.Len(t, h.app.Store().Recipes(), 1)

	h.out.Reset()
	h.app.ListRecipes("wings")
	assert.Contains(t, h.out.String(), "Chicken Wings")

	require.NoError(t, h.app.ShopAdd(r.ID))
	assert.Error(t, h.app.ShopAdd("missing"))

	items := h.app.Store().ShoppingList()
	require.Len(t, items, 2)
	h.app.ShopToggle(items[0].ID)

	h.out.Reset()
	h.app.ShopList()
	list := h.out.String()
	assert.Contains(t, list, "Other (2)")
	assert.Contains(t, list, "[x] 1kg wings")
	assert.Contains(t, list, "From: Chicken Wings")
	assert.Contains(t, list, "Total: $0.00")

	h.out.Reset()
	h.app.ShopClear(true)
	assert.Contains(t, h.out.String(), "Removed 1 completed items.")
	assert.Len(t, h.app.Store().ShoppingList(), 1)

	h.app.ShopRemoveRecipe("Chicken Wings")
	assert.Empty(t, h.app.Store().ShoppingList())

	dark := true
	require.NoError(t, h.app.SetPreferences(&dark, "Imperial"))
	prefs := h.app.Store().State().Preferences
	assert.True(t, prefs.DarkMode)
	assert.Equal(t, store.Imperial, prefs.UnitSystem)
	assert.ErrorIs(t, h.app.SetPreferences(nil, "furlongs"), store.ErrInvalidUnitSystem)

	assert.ErrorIs(t, h.app.Login(ctx, "token"), ErrRemoteDisabled)
	assert.ErrorIs(t, h.app.Logout(ctx), ErrRemoteDisabled)

	require.NoError(t, h.app.DeleteRecipe(ctx, r.ID))
	assert.Empty(t, h.app.Store().Recipes())

	h.settle(t)
	_, err = h.kv.Get(ctx, store.DefaultKey)
	assert.NoError(t, err)
}

func TestSignedInWorkflow(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	h.remote.Seed(remote.Row{UserID: bob.ID, Title: "Shakshuka", Ingredients: []recipe.Ingredient{{Name: "eggs", Amount: "4", Category: "Dairy"}}})

	require.NoError(t, h.app.FetchRecipes(ctx))
	assert.Contains(t, h.out.String(), "Not signed in")

	token, err := h.ver.Issue(bob, time.Hour)
	require.NoError(t, err)
	require.NoError(t, h.app.Login(ctx, token))
	h.settle(t)

	recipes := h.app.Store().Recipes()
	require.Len(t, recipes, 1)
	assert.Equal(t, "Shakshuka", recipes[0].Title)

	added, err := h.app.AddRecipe(ctx, recipe.ManualInput{Title: "Wok Noodles", Ingredients: "noodles"})
	require.NoError(t, err)
	assert.True(t, identity.IsRemoteEligible(added.ID))
	assert.Equal(t, recipe.Tags{"Wok"}, added.Tags)
	assert.Len(t, h.remote.Rows(), 2)

	h.remote.AddProduct("eggs", remote.Product{ID: 7, SKU: "EGG-12", Name: "Free range eggs", PriceAmount: ptr(int64(349))})
	require.NoError(t, h.app.ShopAdd(recipes[0].ID))
	require.NoError(t, h.app.ShopMatch(ctx))

	h.out.Reset()
	h.app.ShopList()
	assert.Contains(t, h.out.String(), "$3.49")
	assert.Contains(t, h.out.String(), "Total: $3.49  Remaining: $3.49")

	require.NoError(t, h.app.DeleteRecipe(ctx, added.ID))
	assert.Len(t, h.remote.Rows(), 1)

	h.remote.SetOffline(true)
	h.out.Reset()
	require.NoError(t, h.app.FetchRecipes(ctx))
	assert.Contains(t, h.out.String(), "Remote store unavailable")
	assert.Len(t, h.app.Store().Recipes(), 1)
	h.remote.SetOffline(false)

	require.NoError(t, h.app.Logout(ctx))
	assert.Nil(t, h.app.Store().User())
	assert.Len(t, h.app.Store().Recipes(), 1)
	_, err = h.kv.Get(ctx, auth.SessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStartRestoresSession(t *testing.T) {
	logger := testutil.Logger()
	fake := testutil.NewFakeRemote()
	fake.Seed(remote.Row{UserID: bob.ID, Title: "Dal"})
	kv := storage.NewMemoryKV()
	ver := auth.NewVerifier(jwtSecret)

	token, err := ver.Issue(bob, time.Hour)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), auth.SessionKey, []byte(token)))

	a := NewApp(Deps{
		Logger:  logger,
		Store:   store.New(store.WithLogger(logger), store.WithKV(kv, store.DefaultKey), store.WithSyncEngine(syncer.New(fake, logger))),
		Session: auth.NewSession(ver, kv, logger),
	})

	var ran bool
	err = a.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, bob.ID, a.Store().User().ID)

	titles := []string{}
	for _, r := range a.Store().Recipes() {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Dal"}, titles)
}

func TestAddWhileRestoredSessionFetches(t *testing.T) {
	logger := testutil.Logger()
	fake := testutil.NewFakeRemote()
	fake.Seed(remote.Row{UserID: bob.ID, Title: "Dal"})
	kv := storage.NewMemoryKV()
	ver := auth.NewVerifier(jwtSecret)
	ctx := context.Background()

	token, err := ver.Issue(bob, time.Hour)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, auth.SessionKey, []byte(token)))

	a := NewApp(Deps{
		Logger:  logger,
		Store:   store.New(store.WithLogger(logger), store.WithKV(kv, store.DefaultKey), store.WithSyncEngine(syncer.New(fake, logger))),
		Session: auth.NewSession(ver, kv, logger),
	})

	release := fake.Hold("ListRecipes")
	require.NoError(t, a.Start(ctx))
	require.Eventually(t, func() bool { return fake.Calls("ListRecipes") == 1 }, 2*time.Second, 5*time.Millisecond)

	added, err := a.AddRecipe(ctx, recipe.ManualInput{Title: "Toast", Ingredients: "bread"})
	require.NoError(t, err)
	assert.True(t, identity.IsRemoteEligible(added.ID))
	assert.Equal(t, "Toast", added.Title)

	release()
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, a.Close(waitCtx))

	titles := []string{}
	for _, r := range a.Store().Recipes() {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"Dal", "Toast"}, titles)
	assert.Len(t, fake.Rows(), 2)
}

func TestImportRecipe(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	h.gen.content = "```json\n" + `{"title":"Slow Cooker Chili","prepTime":"8h","servings":"6",` +
		`"tags":[],"ingredients":[{"name":"beans","amount":"2 cans","category":""}],"steps":["Add everything","Cook on low"]}` + "\n```"

	r, err := h.app.ImportRecipe(ctx, "chili: beans, cook slowly", "")
	require.NoError(t, err)
	assert.Equal(t, "imported-1", r.ID)
	assert.Equal(t, "Chili", r.Title)
	assert.Equal(t, recipe.Tags{"Slow Cooker"}, r.Tags)
	assert.Equal(t, recipe.CategoryOther, r.Ingredients[0].Category)

	h.out.Reset()
	require.NoError(t, h.app.Status(ctx))
	status := h.out.String()
	assert.Contains(t, status, "Recipes: 1")
	assert.Contains(t, status, "imports: 1  tokens: 120/80")

	h.gen.err = errors.New("quota exceeded")
	_, err = h.app.ImportRecipe(ctx, "more text", "")
	assert.ErrorIs(t, err, importer.ErrFormatFailed)
	assert.Len(t, h.app.Store().Recipes(), 1)

	h.out.Reset()
	require.NoError(t, h.app.CleanupMetrics(ctx, 0))
	assert.Contains(t, h.out.String(), "Removed")
}

func TestImportWithoutProvider(t *testing.T) {
	a := NewApp(Deps{Store: store.New(store.WithLogger(testutil.Logger()))})
	_, err := a.ImportRecipe(context.Background(), "text", "")
	assert.ErrorIs(t, err, importer.ErrFormatFailed)
}

func ptr[T any](v T) *T { return &v }
