package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/models"
	"github.com/librescript/backend/internal/services"
)

type AuthHandler struct {
	users *services.UserService
	log   *zap.Logger
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusOK, models.AuthResponse{Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: token})
}

// Authenticate echoes the identity carried by the bearer token.
func (h *AuthHandler) Authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header."})
		return
	}

	identity, err := h.users.Authenticate(strings.TrimSpace(token))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}
