// Package server initializes and runs the recipekeeper API server.
// It opens the database, applies migrations, selects the media backend,
// wires the services and runs the HTTP server until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/recipekeeper/internal/server/media"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// openDB is a seam for tests.
var openDB = repomanager.OpenDB

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := media.NewStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}

	svc := httpapi.Services{
		Users:       services.NewUserService(db, m, c),
		Tags:        services.NewCatalogService(db, m, models.KindTag),
		Ingredients: services.NewCatalogService(db, m, models.KindIngredient),
		Recipes:     services.NewRecipeService(db, m, store, c, logger),
		DB:          db,
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(serverOptions(c, store), svc, logger),
	}, nil
}

// serverOptions maps config onto transport options. Local media is served
// by the API itself under the path of MediaBaseURL.
func serverOptions(c *config.Config, store media.Store) httpapi.Options {
	opts := httpapi.Options{
		Address:        c.EndpointAddrHTTP,
		MaxImageBytes:  c.MaxImageBytes,
		RateLimit:      c.RateLimit,
		RateLimitBurst: c.RateLimitBurst,
	}
	if ls, ok := store.(*media.LocalStore); ok {
		opts.MediaDir = ls.Root()
		opts.MediaPath = mediaPath(c.MediaBaseURL)
	}
	return opts
}

// mediaPath extracts the route path from a base URL such as "/media/" or
// "http://host/media/".
func mediaPath(baseURL string) string {
	p := baseURL
	if u, err := url.Parse(baseURL); err == nil {
		p = u.Path
	}
	p = strings.TrimSuffix(p, "/")
	if p == "" || !strings.HasPrefix(p, "/") {
		return "/media"
	}
	return p
}

// Run serves until SIGINT/SIGTERM or ctx cancellation.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
