package models

import "time"

type Comment struct {
	ID              int       `gorm:"primaryKey" json:"id"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
	PostID          int       `gorm:"not null;index" json:"postId"`
	Post            *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID          int       `gorm:"not null;index" json:"userId"`
	User            User      `json:"-"`
	ParentCommentID *int      `gorm:"index" json:"parentCommentId"`
	ParentComment   *Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type CommentView struct {
	ID              int           `json:"id"`
	Content         string        `json:"content"`
	CreatedAt       time.Time     `json:"createdAt"`
	UserID          int           `json:"userId"`
	PostID          int           `json:"postId"`
	ParentCommentID *int          `json:"parentCommentId,omitempty"`
	User            AuthorSummary `json:"user"`
}

func NewCommentView(c Comment) CommentView {
	return CommentView{
		ID:              c.ID,
		Content:         c.Content,
		CreatedAt:       c.CreatedAt,
		UserID:          c.UserID,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		User:            c.User.Summary(),
	}
}

// CommentThread is a top-level comment with its direct replies.
type CommentThread struct {
	CommentView
	Replies []CommentView `json:"replies"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
	PostID  int    `json:"postId" binding:"required"`
	UserID  int    `json:"userId"`
}

type ReplyRequest struct {
	Content string `json:"content" binding:"required"`
	UserID  int    `json:"userId"`
}

type UpdateCommentRequest struct {
	ID      int    `json:"id"`
	Content string `json:"content" binding:"required"`
}
