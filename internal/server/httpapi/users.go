package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) createUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}

	in := services.UserInput{}
	if req.Email != nil {
		in.Email = *req.Email
	}
	if req.Password != nil {
		in.Password = *req.Password
	}
	if req.Name != nil {
		in.Name = *req.Name
	}

	u, err := s.services.Users.CreateUser(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(u))
}

func (s *Server) createToken(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := s.services.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) revokeToken(c *gin.Context) {
	if err := s.services.Users.RevokeToken(c.Request.Context(), c.GetString(ctxKeyToken)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(currentUser(c)))
}

func (s *Server) updateProfile(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req userRequest
		if !bindJSON(c, &req) {
			return
		}

		upd := services.ProfileUpdate{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Token:    c.GetString(ctxKeyToken),
		}
		u, err := s.services.Users.UpdateProfile(c.Request.Context(), currentUser(c).ID, upd, partial)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newUserResponse(u))
	}
}
