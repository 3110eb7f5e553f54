package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. An empty body leaves dst
// untouched, which PATCH relies on.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "body", "malformed JSON: "+err.Error())
		return false
	}
	return true
}

// pathID parses the :id segment. Malformed ids answer 404 since no such
// resource can exist.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// parseIDList parses a comma-separated id list such as "1,2,3". A bad list
// is recorded on verr under field.
func parseIDList(verr *common.ValidationError, field, raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			verr.Add(field, "expected a comma-separated list of ids")
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

// parseFlag reads a boolean query flag. "1" and "true" enable it, "0",
// "false" and absence disable it.
func parseFlag(field, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true":
		return true, nil
	case "", "0", "false":
		return false, nil
	default:
		return false, common.NewValidationError(field, "expected 0, 1, true or false")
	}
}
