package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/ai"
	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/models"
)

// AiHandler proxies the external text-generation service.
type AiHandler struct {
	client *ai.Client
	log    *zap.Logger
}

func (h *AiHandler) Status(c *gin.Context) {
	resp, err := h.client.Status(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{"error": "AI service unavailable"})
		return
	}
	c.Data(http.StatusOK, gin.MIMEJSON, resp.Body)
}

func (h *AiHandler) Generate(c *gin.Context) {
	var req models.AiGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respondError(c, h.log, apperr.InvalidInput("Prompt is required"))
		return
	}

	out := ai.GenerateRequest{Prompt: req.Prompt, Length: ai.DefaultLength, Temperature: ai.DefaultTemperature}
	if req.Length != nil {
		out.Length = *req.Length
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}

	h.log.Info("ai generate", zap.Int("prompt_len", len(req.Prompt)), zap.Int("length", out.Length))
	result, resp, err := h.client.Generate(c.Request.Context(), out)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if result == nil {
		h.log.Warn("ai generate rejected", zap.Stringer("upstream", resp))
		c.Data(resp.StatusCode, gin.MIMEJSON, resp.Body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"prompt":     result.Prompt,
		"response":   result.Response,
		"parameters": result.Parameters,
		"timestamp":  result.Timestamp,
	})
}

func (h *AiHandler) Reload(c *gin.Context) {
	resp, err := h.client.Reload(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Data(resp.StatusCode, gin.MIMEJSON, resp.Body)
}

// Health reports connectivity to the AI service and always answers 200.
func (h *AiHandler) Health(c *gin.Context) {
	resp, err := h.client.Ping(c.Request.Context())
	switch {
	case err != nil:
		h.log.Warn("ai service unreachable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"connected": false, "error": apperr.Message(err)})
	case !resp.OK():
		c.JSON(http.StatusOK, gin.H{"connected": false, "status_code": resp.StatusCode})
	default:
		c.JSON(http.StatusOK, gin.H{"connected": true, "ai_status": resp.Body})
	}
}
