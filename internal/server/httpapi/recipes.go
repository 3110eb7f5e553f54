package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/media"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the image limit for form framing.
const multipartOverhead = 64 << 10

func (s *Server) listRecipes(c *gin.Context) {
	verr := &common.ValidationError{}
	filter := models.RecipeFilter{
		TagIDs:        parseIDList(verr, "tags", c.Query("tags")),
		IngredientIDs: parseIDList(verr, "ingredients", c.Query("ingredients")),
	}
	if err := verr.OrNil(); err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	list, err := s.services.Recipes.List(ctx, currentUser(c).ID, filter)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]recipeResponse, 0, len(list))
	for _, r := range list {
		resp, err := s.newRecipeResponse(ctx, r)
		if err != nil {
			s.writeError(c, err)
			return
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	r, err := s.services.Recipes.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeRecipeDetail(c, http.StatusOK, r)
}

func (s *Server) createRecipe(c *gin.Context) {
	var req recipeRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := s.services.Recipes.Create(c.Request.Context(), currentUser(c).ID, req.input())
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.writeRecipeDetail(c, http.StatusCreated, r)
}

func (s *Server) updateRecipe(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req recipeRequest
		if !bindJSON(c, &req) {
			return
		}

		r, err := s.services.Recipes.Update(c.Request.Context(), currentUser(c).ID, id, req.input(), partial)
		if err != nil {
			s.writeError(c, err)
			return
		}
		s.writeRecipeDetail(c, http.StatusOK, r)
	}
}

func (s *Server) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.services.Recipes.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) uploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	data, err := s.readImage(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	r, err := s.services.Recipes.UploadImage(ctx, currentUser(c).ID, id, data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	img, err := s.imageURL(ctx, r.Image)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeImageResponse{ID: r.ID, Image: img})
}

func (s *Server) clearImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.services.Recipes.ClearImage(c.Request.Context(), currentUser(c).ID, id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// readImage returns the bytes of the multipart "image" field. Oversized
// bodies come back one byte over the limit so the service rejects them.
func (s *Server) readImage(c *gin.Context) ([]byte, error) {
	limit := s.opts.MaxImageBytes
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	fh, err := c.FormFile(media.ImageField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, common.NewValidationError(media.ImageField,
				fmt.Sprintf("file is larger than %d bytes", limit))
		}
		return nil, common.NewValidationError(media.ImageField, "no file was submitted")
	}
	if limit > 0 && fh.Size > limit {
		return nil, common.NewValidationError(media.ImageField,
			fmt.Sprintf("file is larger than %d bytes", limit))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func (s *Server) writeRecipeDetail(c *gin.Context, status int, r *models.Recipe) {
	resp, err := s.newRecipeDetailResponse(c.Request.Context(), r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(status, resp)
}
