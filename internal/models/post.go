package models

import "time"

// Post statuses accepted by the status endpoint.
const (
	StatusOpen       = "Open"
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusSolved     = "Solved"
	StatusClosed     = "Closed"
)

var PostStatuses = []string{StatusOpen, StatusPending, StatusInProgress, StatusSolved, StatusClosed}

func ValidPostStatus(s string) bool {
	for _, v := range PostStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Post struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:300;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	UserID    int       `gorm:"not null;index" json:"userId"`
	User      User      `json:"-"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int       `gorm:"not null;default:0" json:"downvotes"`
	Language  string    `gorm:"size:50" json:"language"`
	Status    string    `gorm:"size:20" json:"status"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is a post as returned by the read endpoints.
type PostView struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	UserID       int           `json:"userId"`
	Upvotes      int           `json:"upvotes"`
	Downvotes    int           `json:"downvotes"`
	Language     string        `json:"language"`
	Status       string        `json:"status"`
	Views        int           `json:"views"`
	CreatedAt    time.Time     `json:"createdAt"`
	Author       AuthorSummary `json:"author"`
	CommentCount int64         `json:"commentCount"`
	// UserVote is nil when the caller is anonymous or has not voted.
	UserVote *bool `json:"userVote,omitempty"`
}

func NewPostView(p Post, commentCount int64) PostView {
	return PostView{
		ID:           p.ID,
		Title:        p.Title,
		Content:      p.Content,
		UserID:       p.UserID,
		Upvotes:      p.Upvotes,
		Downvotes:    p.Downvotes,
		Language:     p.Language,
		Status:       p.Status,
		Views:        p.Views,
		CreatedAt:    p.CreatedAt,
		Author:       p.User.Summary(),
		CommentCount: commentCount,
	}
}

// PostRequest is the body of both create and full-overwrite update.
type PostRequest struct {
	ID        int        `json:"id"`
	Title     string     `json:"title" binding:"required"`
	Content   string     `json:"content"`
	UserID    int        `json:"userId"`
	Language  string     `json:"language"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"createdAt"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type VoteResult struct {
	ID        int `json:"id"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}
