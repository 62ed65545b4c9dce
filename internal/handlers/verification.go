package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/models"
	"github.com/librescript/backend/internal/services"
)

type VerificationHandler struct {
	verification *services.VerificationService
	log          *zap.Logger
}

func (h *VerificationHandler) Status(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	verified, err := h.verification.Status(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	msg := "Your account is not verified. Enter the verification code sent to your email."
	if verified {
		msg = "Your account is already verified."
	}
	c.JSON(http.StatusOK, gin.H{"verified": verified, "message": msg})
}

func (h *VerificationHandler) SendCode(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	if err := h.verification.SendCode(c.Request.Context(), userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent by email."})
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.verification.Verify(c.Request.Context(), userID, req.Code); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true, "message": "Your account has been verified."})
}
