// Package app wires configuration, persistence, the remote store and the AI
// clients into a ready-to-use Store, and implements the CLI commands on top.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"easydish/internal/auth"
	"easydish/internal/config"
	"easydish/internal/database"
	"easydish/internal/importer"
	"easydish/internal/llm"
	"easydish/internal/metrics"
	"easydish/internal/remote"
	"easydish/internal/storage"
	"easydish/internal/store"
	"easydish/internal/syncer"
)

// ErrRemoteDisabled is returned by commands that need the remote store when
// none is configured.
var ErrRemoteDisabled = errors.New("remote store not configured: set DATABASE_URL")

// App holds the application's dependencies.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	store    *store.Store
	session  *auth.Session
	importer *importer.Importer
	metrics  *metrics.Store
	closers  []func() error
}

// Deps are the collaborators NewApp assembles. Session, Importer and Metrics
// are optional.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Out      io.Writer
	Store    *store.Store
	Session  *auth.Session
	Importer *importer.Importer
	Metrics  *metrics.Store
}

// NewApp creates an App from already constructed dependencies.
func NewApp(d Deps) *App {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.Config == nil {
		d.Config = &config.Config{}
	}
	return &App{
		cfg:      d.Config,
		logger:   d.Logger,
		out:      d.Out,
		store:    d.Store,
		session:  d.Session,
		importer: d.Importer,
		metrics:  d.Metrics,
	}
}

// New builds every dependency from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*App, error) {
	var closers []func() error
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	db, err := database.NewDB(cfg.MetricsDBPath(), logger)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize database: %w", err))
	}
	closers = append(closers, db.Close)

	var kv storage.KV
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		kv = storage.NewSQLiteKV(db.SQL)
	default:
		fileKV, err := storage.NewFileKV(cfg.KVPath())
		if err != nil {
			return fail(fmt.Errorf("failed to initialize storage: %w", err))
		}
		kv = fileKV
	}

	opts := []store.Option{
		store.WithLogger(logger),
		store.WithKV(kv, cfg.StorageKey),
	}

	var session *auth.Session
	if cfg.RemoteEnabled() {
		pg, err := remote.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize remote store: %w", err))
		}
		pg.WithCatalogFunction(cfg.CatalogFunction)
		closers = append(closers, func() error { pg.Close(); return nil })

		enricher, err := store.NewEnricher(pg, store.DefaultMatchCacheSize, logger)
		if err != nil {
			return fail(err)
		}
		opts = append(opts,
			store.WithSyncEngine(syncer.New(pg, logger)),
			store.WithEnricher(enricher),
		)
		session = auth.NewSession(auth.NewVerifier(cfg.AuthJWTSecret), kv, logger)
	}

	var imp *importer.Importer
	if cfg.RequireAI() == nil {
		textGen, closer, err := newTextGenerator(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		if closer != nil {
			closers = append(closers, closer.Close)
		}
		imp = importer.New(importer.NewFormatter(textGen, nil), nil)
	}

	a := NewApp(Deps{
		Config:   cfg,
		Logger:   logger,
		Out:      out,
		Store:    store.New(opts...),
		Session:  session,
		Importer: imp,
		Metrics:  metrics.NewStore(db.SQL),
	})
	a.closers = closers
	return a, nil
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, llm.Closer, error) {
	if cfg.AIProvider == config.ProviderGroq {
		return llm.NewGroqClient(cfg.GroqAPIKey, llm.WithGroqModel(cfg.GroqModel)), nil, nil
	}
	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return gemini, gemini, nil
}

// Start rehydrates the store and restores the session. A restored user is
// handed to the store, which starts a background fetch.
func (a *App) Start(ctx context.Context) error {
	if err := a.store.Load(ctx); err != nil {
		return err
	}
	if a.session == nil {
		return nil
	}

	a.session.Subscribe(func(u *auth.User) {
		a.store.SetUser(ctx, u)
	})
	if _, err := a.session.Restore(ctx); err != nil {
		return err
	}
	return nil
}

// Store exposes the underlying store.
func (a *App) Store() *store.Store {
	return a.store
}

// Close waits for pending sync and persistence, then releases resources.
func (a *App) Close(ctx context.Context) error {
	err := a.store.Close(ctx)
	for i := len(a.closers) - 1; i >= 0; i-- {
		if cerr := a.closers[i](); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
