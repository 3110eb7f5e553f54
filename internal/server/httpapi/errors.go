package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// writeError maps a service error onto a status code and JSON body.
// Unexpected errors are logged and answered with a generic message.
func (s *Server) writeError(c *gin.Context, err error) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.Header("WWW-Authenticate", common.BearerScheme)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unable to authenticate with provided credentials"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		s.logger.Error(c.Request.Context(), "request failed",
			"request_id", requestIDFromContext(c),
			"route", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// badRequest answers a malformed request body or query.
func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": map[string]string{field: msg}})
}
