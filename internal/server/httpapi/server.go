// Package httpapi exposes the recipe REST API over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// Options holds transport settings.
type Options struct {
	Address        string
	MaxImageBytes  int64
	RateLimit      float64
	RateLimitBurst int
	// MediaDir, when set, is served at MediaPath (local media backend).
	MediaDir  string
	MediaPath string
}

type Server struct {
	opts     Options
	services Services
	logger   logging.Logger
	router   *gin.Engine
}

func NewServer(opts Options, svc Services, l logging.Logger) *Server {
	s := &Server{
		opts:     opts,
		services: svc,
		logger:   l.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	if s.opts.MaxImageBytes > 0 {
		r.MaxMultipartMemory = s.opts.MaxImageBytes
	}

	var limiter *rate.Limiter
	if s.opts.RateLimit > 0 {
		burst := s.opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)
	}

	r.Use(
		s.metricsMiddleware(),
		s.requestIDMiddleware(),
		s.recoveryMiddleware(),
		s.loggingMiddleware(),
	)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if s.opts.MediaDir != "" {
		path := s.opts.MediaPath
		if path == "" {
			path = "/media"
		}
		r.Static(path, s.opts.MediaDir)
	}

	api := r.Group("/", s.rateLimitMiddleware(limiter))

	api.POST("/users", s.createUser)
	api.POST("/users/token", s.createToken)

	authed := api.Group("/", s.requireAuth())

	authed.DELETE("/users/token", s.revokeToken)
	authed.GET("/users/me", s.getProfile)
	authed.PUT("/users/me", s.updateProfile(false))
	authed.PATCH("/users/me", s.updateProfile(true))

	s.catalogRoutes(authed.Group("/tags"), s.services.Tags)
	s.catalogRoutes(authed.Group("/ingredients"), s.services.Ingredients)

	recipes := authed.Group("/recipes")
	recipes.GET("", s.listRecipes)
	recipes.POST("", s.createRecipe)
	recipes.GET("/:id", s.getRecipe)
	recipes.PUT("/:id", s.updateRecipe(false))
	recipes.PATCH("/:id", s.updateRecipe(true))
	recipes.DELETE("/:id", s.deleteRecipe)
	recipes.POST("/:id/image", s.uploadImage)
	recipes.DELETE("/:id/image", s.clearImage)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func (s *Server) health(c *gin.Context) {
	if s.services.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.services.DB.PingContext(ctx); err != nil {
			s.logger.Warn(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
