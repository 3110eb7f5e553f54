package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaPath(t *testing.T) {
	tests := map[string]string{
		"/media/":                  "/media",
		"/static/img":              "/static/img",
		"http://localhost:8000/m/": "/m",
		"https://cdn.example.com/": "/media",
		"":                         "/media",
	}
	for in, want := range tests {
		assert.Equal(t, want, mediaPath(in), in)
	}
}

func TestServerOptions_LocalStoreServesMedia(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.MediaRoot = t.TempDir()

	store, err := media.NewLocalStore(cfg.MediaRoot, cfg.MediaBaseURL)
	require.NoError(t, err)

	opts := serverOptions(cfg, store)
	assert.Equal(t, cfg.EndpointAddrHTTP, opts.Address)
	assert.Equal(t, cfg.MaxImageBytes, opts.MaxImageBytes)
	assert.Equal(t, store.Root(), opts.MediaDir)
	assert.Equal(t, "/media", opts.MediaPath)
}

func TestServerOptions_RemoteStoreNotServed(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	opts := serverOptions(cfg, nil)
	assert.Empty(t, opts.MediaDir)
	assert.Empty(t, opts.MediaPath)
}

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("refused")
	}
	defer func() { openDB = orig }()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}
