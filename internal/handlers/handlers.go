package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/ai"
	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/database"
	"github.com/librescript/backend/internal/middleware"
	"github.com/librescript/backend/internal/services"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Category     *CategoryHandler
	Verification *VerificationHandler
	Ai           *AiHandler
	Health       *HealthHandler
}

// Deps are the collaborators the handlers are built from.
type Deps struct {
	DB           database.Service
	Users        *services.UserService
	Posts        *services.PostService
	Comments     *services.CommentService
	Categories   *services.CategoryService
	Verification *services.VerificationService
	AI           *ai.Client
	Log          *zap.Logger
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Auth:         &AuthHandler{users: d.Users, log: log},
		User:         &UserHandler{users: d.Users, log: log},
		Post:         &PostHandler{posts: d.Posts, log: log},
		Comment:      &CommentHandler{comments: d.Comments, log: log},
		Category:     &CategoryHandler{categories: d.Categories, log: log},
		Verification: &VerificationHandler{verification: d.Verification, log: log},
		Ai:           &AiHandler{client: d.AI, log: log},
		Health:       &HealthHandler{db: d.DB},
	}
}

// respondError writes err as {"error": message}. Internal causes are logged
// and replaced with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID parses a positive integer path parameter. It writes a 400 and
// returns false when the value is not one.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + "."})
		return 0, false
	}
	return id, true
}

// callerID returns the authenticated user. Routes using it sit behind
// RequireAuth, so a missing identity is answered with 401.
func callerID(c *gin.Context) (int, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user token."})
	}
	return id, ok
}
