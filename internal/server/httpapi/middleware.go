package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	requestIDHeaderName = "X-Request-Id"

	ctxKeyRequestID = "request_id"
	ctxKeyUser      = "user"
	ctxKeyToken     = "token"
)

// requestIDFromContext returns the request id or an empty string.
func requestIDFromContext(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// currentUser returns the user set by requireAuth. It panics when used on a
// route without it.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(ctxKeyUser).(*models.User)
}

// requestIDMiddleware keeps a well-formed client X-Request-Id or mints one.
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeaderName)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Writer.Header().Set(requestIDHeaderName, requestID)
		c.Next()
	}
}

// metricsMiddleware records RED metrics labelled by route template.
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, route, status).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"request_id", requestIDFromContext(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
			"client_ip", c.ClientIP(),
		)
	}
}

// recoveryMiddleware turns a handler panic into a 500.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				panicRecoveries.Inc()
				s.logger.Error(c.Request.Context(), "panic recovered",
					"request_id", requestIDFromContext(c),
					"panic", p,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

// rateLimitMiddleware applies one global token bucket. A nil limiter lets
// everything through.
func (s *Server) rateLimitMiddleware(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow() {
			rateLimitRejects.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the credential from "Bearer <t>" or "Token <t>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	if !strings.EqualFold(scheme, common.BearerScheme) && !strings.EqualFold(scheme, common.TokenScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireAuth resolves the bearer token to a user and stores both in the
// gin context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			s.unauthorized(c, "authentication credentials were not provided")
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			s.unauthorized(c, "authorization header must be in the format 'Bearer {token}'")
			return
		}

		user, err := s.services.Users.ResolveToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				s.unauthorized(c, "invalid token")
				return
			}
			s.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

func (s *Server) unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", common.BearerScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
