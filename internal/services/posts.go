package services

import (
	"context"
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/models"
)

type PostService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

// NewPostService returns a PostService that cleans post bodies with policy.
// A nil policy means bluemonday's UGC policy.
func NewPostService(db *gorm.DB, policy *bluemonday.Policy) *PostService {
	return &PostService{db: db, policy: defaultPolicy(policy)}
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]models.PostView, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, internal(err, "list posts")
	}
	return withCommentCounts(s.db.WithContext(ctx), posts)
}

// Get returns a single post. When viewerID is set the view carries that
// user's vote on the post, if any.
func (s *PostService) Get(ctx context.Context, id int, viewerID *int) (models.PostView, error) {
	db := s.db.WithContext(ctx)

	var post models.Post
	if err := db.Preload("User").First(&post, id).Error; err != nil {
		return models.PostView{}, lookupErr(err, "Post with ID %d not found.", id)
	}

	var count int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", id).Count(&count).Error; err != nil {
		return models.PostView{}, internal(err, "count comments")
	}
	view := models.NewPostView(post, count)

	if viewerID != nil {
		var vote models.PostVote
		err := db.Where("post_id = ? AND user_id = ?", id, *viewerID).Take(&vote).Error
		switch {
		case err == nil:
			up := vote.IsUpvote
			view.UserVote = &up
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return models.PostView{}, internal(err, "load vote")
		}
	}
	return view, nil
}

func (s *PostService) RecordView(ctx context.Context, id int) error {
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return internal(err, "record view")
	}
	return nil
}

// Create stores a new post owned by ownerID. Counters start at zero.
func (s *PostService) Create(ctx context.Context, ownerID int, req models.PostRequest) (*models.Post, error) {
	if req.UserID != 0 && req.UserID != ownerID {
		return nil, apperr.Forbid("You can only create posts as yourself.")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.InvalidInput("Post title is required.")
	}

	db := s.db.WithContext(ctx)
	if err := requireUser(db, ownerID); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:    req.Title,
		Content:  s.policy.Sanitize(req.Content),
		UserID:   ownerID,
		Language: req.Language,
		Status:   req.Status,
	}
	if err := db.Omit(clause.Associations).Create(&post).Error; err != nil {
		return nil, internal(err, "create post")
	}
	return &post, nil
}

// Update overwrites the editable fields of a post owned by callerID. Vote
// counters and views are kept.
func (s *PostService) Update(ctx context.Context, callerID, id int, req models.PostRequest) error {
	if req.ID != 0 && req.ID != id {
		return apperr.InvalidInput("Post ID not matching.")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperr.InvalidInput("Post title is required.")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.owned(tx, callerID, id, "You can only edit your own posts.")
		if err != nil {
			return err
		}

		if req.UserID != 0 && req.UserID != post.UserID {
			if err := requireUser(tx, req.UserID); err != nil {
				return err
			}
			post.UserID = req.UserID
		}
		post.Title = req.Title
		post.Content = s.policy.Sanitize(req.Content)
		post.Language = req.Language
		post.Status = req.Status
		if req.CreatedAt != nil {
			post.CreatedAt = req.CreatedAt.UTC()
		}

		err = tx.Model(post).
			Select("title", "content", "language", "status", "user_id", "created_at").
			Updates(post).Error
		if err != nil {
			return internal(err, "update post")
		}
		return nil
	})
}

// Vote records callerID's vote on a post. Voting the same way twice is
// rejected; voting the other way flips the existing vote. The post's counters
// always match its vote rows.
func (s *PostService) Vote(ctx context.Context, callerID, postID int, up bool) (models.VoteResult, error) {
	var result models.VoteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var post models.Post
		if err := q.First(&post, postID).Error; err != nil {
			return lookupErr(err, "Post with ID %d not found.", postID)
		}

		var existing models.PostVote
		err := tx.Where("post_id = ? AND user_id = ?", postID, callerID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.PostVote{PostID: postID, UserID: callerID, IsUpvote: up}
			if err := tx.Omit(clause.Associations).Create(&vote).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return alreadyVoted(up)
				}
				return internal(err, "create vote")
			}
			if up {
				post.Upvotes++
			} else {
				post.Downvotes++
			}
		case err != nil:
			return internal(err, "load vote")
		case existing.IsUpvote == up:
			return alreadyVoted(up)
		default:
			if err := tx.Model(&existing).Update("is_upvote", up).Error; err != nil {
				return internal(err, "flip vote")
			}
			if up {
				post.Upvotes++
				post.Downvotes--
			} else {
				post.Downvotes++
				post.Upvotes--
			}
		}

		err = tx.Model(&post).UpdateColumns(map[string]any{
			"upvotes":   post.Upvotes,
			"downvotes": post.Downvotes,
		}).Error
		if err != nil {
			return internal(err, "update counters")
		}
		result = models.VoteResult{ID: post.ID, Upvotes: post.Upvotes, Downvotes: post.Downvotes}
		return nil
	})
	return result, err
}

func (s *PostService) UpdateStatus(ctx context.Context, callerID, id int, status string) error {
	db := s.db.WithContext(ctx)
	post, err := s.owned(db, callerID, id, "You can only update the status of your own posts.")
	if err != nil {
		return err
	}
	if status == "" {
		return apperr.InvalidInput("Status is required")
	}
	if !models.ValidPostStatus(status) {
		return apperr.InvalidInput("Invalid status. Valid statuses are: %s", strings.Join(models.PostStatuses, ", "))
	}
	if err := db.Model(post).Update("status", status).Error; err != nil {
		return internal(err, "update status")
	}
	return nil
}

// Delete removes a post together with its comments and votes.
func (s *PostService) Delete(ctx context.Context, callerID, id int) error {
	db := s.db.WithContext(ctx)
	post, err := s.owned(db, callerID, id, "You can only delete your own posts.")
	if err != nil {
		return err
	}
	if err := db.Delete(post).Error; err != nil {
		return internal(err, "delete post")
	}
	return nil
}

func (s *PostService) owned(db *gorm.DB, callerID, id int, denied string) (*models.Post, error) {
	var post models.Post
	if err := db.First(&post, id).Error; err != nil {
		return nil, lookupErr(err, "Post with ID %d not found.", id)
	}
	if post.UserID != callerID {
		return nil, apperr.Forbid("%s", denied)
	}
	return &post, nil
}

func alreadyVoted(up bool) error {
	if up {
		return apperr.DuplicateOf("You have already upvoted this post.")
	}
	return apperr.DuplicateOf("You have already downvoted this post.")
}

func requireUser(db *gorm.DB, id int) error {
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return internal(err, "check user")
	}
	if n == 0 {
		return apperr.InvalidInput("User with ID %d not found.", id)
	}
	return nil
}

// withCommentCounts projects posts into views, counting each post's comments.
func withCommentCounts(db *gorm.DB, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		var count int64
		if err := db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&count).Error; err != nil {
			return nil, internal(err, "count comments")
		}
		views = append(views, models.NewPostView(p, count))
	}
	return views, nil
}
