package media

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
)

// NewStore builds the backend selected by cfg.MediaBackend.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendLocal, "":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaBaseURL)
	case config.MediaBackendS3:
		return NewS3Store(ctx, S3Options{
			Region:      cfg.S3Region,
			AccessKey:   cfg.S3RootUser,
			SecretKey:   cfg.S3RootPassword,
			Endpoint:    cfg.S3BaseEndpoint,
			Bucket:      cfg.S3Bucket,
			URLValidity: cfg.ImageURLValidity,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}
