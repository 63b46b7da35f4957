package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"scrapectl/pkg/cli/client"
	"scrapectl/pkg/cli/logger"
	"scrapectl/pkg/cli/tui"
	"scrapectl/pkg/config"
	"scrapectl/pkg/db"
	"scrapectl/pkg/history"
	"scrapectl/pkg/lifecycle"
	"scrapectl/pkg/scraper"
)

type App struct {
	cfg    *config.Config
	out    io.Writer
	client *scraper.Client
	store  *history.Store
	db     *db.DB
	remote *client.Client
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg: cfg,
		out: os.Stdout,
	}
}

// SetOutput redirects command output, mainly for tests.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// getClient returns the scraper client, creating it if necessary
func (a *App) getClient() *scraper.Client {
	if a.client == nil {
		a.client = scraper.NewClient(a.cfg.Scraper.BaseURL, a.cfg.ScrapeTimeout())
	}
	return a.client
}

// getStore opens the configured history backend once and loads it.
func (a *App) getStore(ctx context.Context) (*history.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	var backend history.Backend
	switch a.cfg.History.Backend {
	case config.BackendPostgres:
		database, err := db.New(ctx, a.cfg.History.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		a.db = database
		backend = db.NewHistoryBackend(database, a.cfg.History.Key)
	case config.BackendFile:
		backend = history.NewFileBackend(a.cfg.History.Path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", a.cfg.History.Backend)
	}

	store := history.NewStore(backend)
	if _, err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	a.store = store
	logger.Log("history loaded from %s backend", a.cfg.History.Backend)
	return store, nil
}

// newSession wires a fresh operation session to the history store.
func (a *App) newSession(ctx context.Context) (*lifecycle.Session, error) {
	store, err := a.getStore(ctx)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewSession(store, logger.L()), nil
}

// Close releases the database pool, if one was opened.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

// Run launches the interactive TUI.
func (a *App) Run(ctx context.Context) error {
	session, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	store, _ := a.getStore(ctx)
	return tui.Run(ctx, tui.Deps{
		Session: session,
		Doer:    a.getClient(),
		Store:   store,
	})
}
