package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/models"
	"github.com/librescript/backend/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// GetPostComments returns a post's comments as threads.
func (h *CommentHandler) GetPostComments(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	threads, err := h.comments.ThreadsForPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *CommentHandler) CountPostComments(c *gin.Context) {
	postID, ok := pathID(c, "postId")
	if !ok {
		return
	}
	n, err := h.comments.CountForPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, comment)
}

func (h *CommentHandler) CreateReply(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reply, err := h.comments.Reply(c.Request.Context(), userID, parentID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	created(c, reply)
}

func (h *CommentHandler) GetReplies(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	replies, err := h.comments.RepliesOf(c.Request.Context(), parentID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.comments.Update(c.Request.Context(), userID, id, req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func created(c *gin.Context, comment models.CommentView) {
	c.Header("Location", fmt.Sprintf("/api/comment/%d", comment.ID))
	c.JSON(http.StatusCreated, comment)
}
