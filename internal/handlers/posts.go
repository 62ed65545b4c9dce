package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/middleware"
	"github.com/librescript/backend/internal/models"
	"github.com/librescript/backend/internal/services"
)

type PostHandler struct {
	posts *services.PostService
	log   *zap.Logger
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns a single post and counts the view. Authenticated callers
// also get their own vote.
func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.RecordView(c.Request.Context(), id); err != nil {
		h.log.Warn("record view", zap.Int("post_id", id), zap.Error(err))
	}

	var viewer *int
	if uid, ok := middleware.UserID(c); ok {
		viewer = &uid
	}
	post, err := h.posts.Get(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/post/%d", post.ID))
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.posts.Update(c.Request.Context(), userID, id, req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PostHandler) Upvote(c *gin.Context)   { h.vote(c, true) }
func (h *PostHandler) Downvote(c *gin.Context) { h.vote(c, false) }

func (h *PostHandler) vote(c *gin.Context, up bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.posts.Vote(c.Request.Context(), userID, id, up)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.posts.UpdateStatus(c.Request.Context(), userID, id, req.Status); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post status updated successfully", "status": req.Status})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
