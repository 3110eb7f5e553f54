package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// catalogRoutes registers the tag or ingredient endpoints on g.
func (s *Server) catalogRoutes(g *gin.RouterGroup, svc CatalogService) {
	h := &catalogHandlers{s: s, svc: svc}
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update(false))
	g.PATCH("/:id", h.update(true))
	g.DELETE("/:id", h.delete)
}

type catalogHandlers struct {
	s   *Server
	svc CatalogService
}

func (h *catalogHandlers) list(c *gin.Context) {
	assignedOnly, err := parseFlag("assigned_only", c.Query("assigned_only"))
	if err != nil {
		h.s.writeError(c, err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), currentUser(c).ID, assignedOnly)
	if err != nil {
		h.s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCatalogListResponse(items))
}

func (h *catalogHandlers) create(c *gin.Context) {
	var req catalogRequest
	if !bindJSON(c, &req) {
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}

	it, err := h.svc.Create(c.Request.Context(), currentUser(c).ID, name)
	if err != nil {
		h.s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCatalogItemResponse(it))
}

func (h *catalogHandlers) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	it, err := h.svc.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCatalogItemResponse(it))
}

func (h *catalogHandlers) update(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req catalogRequest
		if !bindJSON(c, &req) {
			return
		}

		it, err := h.svc.Update(c.Request.Context(), currentUser(c).ID, id, req.Name, partial)
		if err != nil {
			h.s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newCatalogItemResponse(it))
	}
}

func (h *catalogHandlers) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
