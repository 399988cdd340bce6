package handler

import (
	"net/http"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/service"
	"github.com/Facumerino03/Finquik-back/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Users     *service.UserService
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

func NewAuthHandler(users *service.UserService, jwtSecret, issuer string, ttlHours int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		Users:     users,
		JWTSecret: jwtSecret,
		Issuer:    issuer,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

type registerReq struct {
	FirstName string `json:"firstName" binding:"required,max=64"`
	LastName  string `json:"lastName" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResp struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"` // seconds
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// bad email and bad password answer identically
	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized,
			newErrorDetails(c, http.StatusUnauthorized, "invalid email or password"))
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.Email, h.TokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResp{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.TokenTTL.Seconds()),
	})
}
