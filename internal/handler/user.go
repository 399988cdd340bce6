package handler

import (
	"net/http"

	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the current-user endpoint.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// GetMe returns the profile of the authenticated caller.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.Users.GetByEmail(c.Request.Context(), callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// callerEmail returns the identity the auth middleware resolved for this
// request.
func callerEmail(c *gin.Context) string {
	return c.GetString("userEmail")
}
