package models

import "time"

// PostVote records one user's vote on one post. The (post_id, user_id) pair is unique.
type PostVote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;uniqueIndex:idx_post_votes_post_user" json:"postId"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_post_votes_post_user" json:"userId"`
	User      *User     `json:"-"`
	IsUpvote  bool      `json:"isUpvote"`
	CreatedAt time.Time `json:"createdAt"`
}
