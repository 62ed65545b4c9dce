package services

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/models"
)

type CommentService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

func NewCommentService(db *gorm.DB, policy *bluemonday.Policy) *CommentService {
	return &CommentService{db: db, policy: defaultPolicy(policy)}
}

// Create adds a top-level comment to a post.
func (s *CommentService) Create(ctx context.Context, callerID int, req models.CreateCommentRequest) (models.CommentView, error) {
	if req.UserID != 0 && req.UserID != callerID {
		return models.CommentView{}, apperr.Forbid("You can only comment as yourself.")
	}
	if strings.TrimSpace(req.Content) == "" {
		return models.CommentView{}, apperr.InvalidInput("Comment content is required.")
	}

	db := s.db.WithContext(ctx)
	if err := requirePost(db, req.PostID); err != nil {
		return models.CommentView{}, err
	}
	if err := requireUser(db, callerID); err != nil {
		return models.CommentView{}, err
	}

	comment := models.Comment{
		Content: s.policy.Sanitize(req.Content),
		PostID:  req.PostID,
		UserID:  callerID,
	}
	return s.insert(db, comment)
}

// Reply answers an existing comment. The reply belongs to the parent's post.
func (s *CommentService) Reply(ctx context.Context, callerID, parentID int, req models.ReplyRequest) (models.CommentView, error) {
	if req.UserID != 0 && req.UserID != callerID {
		return models.CommentView{}, apperr.Forbid("You can only reply as yourself.")
	}
	if strings.TrimSpace(req.Content) == "" {
		return models.CommentView{}, apperr.InvalidInput("Reply content is required.")
	}

	db := s.db.WithContext(ctx)
	var parent models.Comment
	if err := db.First(&parent, parentID).Error; err != nil {
		return models.CommentView{}, lookupErr(err, "Parent comment with ID %d not found.", parentID)
	}
	if err := requireUser(db, callerID); err != nil {
		return models.CommentView{}, err
	}

	reply := models.Comment{
		Content:         s.policy.Sanitize(req.Content),
		PostID:          parent.PostID,
		UserID:          callerID,
		ParentCommentID: &parent.ID,
	}
	return s.insert(db, reply)
}

func (s *CommentService) insert(db *gorm.DB, c models.Comment) (models.CommentView, error) {
	if err := db.Omit(clause.Associations).Create(&c).Error; err != nil {
		return models.CommentView{}, internal(err, "create comment")
	}
	if err := db.Preload("User").First(&c, c.ID).Error; err != nil {
		return models.CommentView{}, internal(err, "reload comment")
	}
	return models.NewCommentView(c), nil
}

// ThreadsForPost returns the post's top-level comments in creation order,
// each carrying its direct replies.
func (s *CommentService) ThreadsForPost(ctx context.Context, postID int) ([]models.CommentThread, error) {
	db := s.db.WithContext(ctx)
	if err := requirePost(db, postID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	err := db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, internal(err, "list comments")
	}
	return BuildThreads(comments), nil
}

// BuildThreads nests replies one level deep under their parent. Replies whose
// parent is itself a reply are not attached to any thread.
func BuildThreads(comments []models.Comment) []models.CommentThread {
	replies := make(map[int][]models.CommentView)
	for _, c := range comments {
		if c.ParentCommentID != nil {
			pid := *c.ParentCommentID
			replies[pid] = append(replies[pid], models.NewCommentView(c))
		}
	}

	threads := make([]models.CommentThread, 0, len(comments))
	for _, c := range comments {
		if c.ParentCommentID != nil {
			continue
		}
		r := replies[c.ID]
		if r == nil {
			r = []models.CommentView{}
		}
		threads = append(threads, models.CommentThread{CommentView: models.NewCommentView(c), Replies: r})
	}
	return threads
}

func (s *CommentService) CountForPost(ctx context.Context, postID int) (int64, error) {
	db := s.db.WithContext(ctx)
	if err := requirePost(db, postID); err != nil {
		return 0, err
	}
	var n int64
	if err := db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, internal(err, "count comments")
	}
	return n, nil
}

func (s *CommentService) List(ctx context.Context) ([]models.CommentView, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, internal(err, "list comments")
	}
	return views(comments), nil
}

func (s *CommentService) Get(ctx context.Context, id int) (models.CommentView, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return models.CommentView{}, lookupErr(err, "Comment with ID %d not found.", id)
	}
	return models.NewCommentView(c), nil
}

// RepliesOf returns the direct replies of a comment, oldest first.
func (s *CommentService) RepliesOf(ctx context.Context, parentID int) ([]models.CommentView, error) {
	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Comment{}).Where("id = ?", parentID).Count(&n).Error; err != nil {
		return nil, internal(err, "check comment")
	}
	if n == 0 {
		return nil, apperr.Missing("Comment with ID %d not found.", parentID)
	}

	var comments []models.Comment
	err := db.Preload("User").
		Where("parent_comment_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, internal(err, "list replies")
	}
	return views(comments), nil
}

func (s *CommentService) Update(ctx context.Context, callerID, id int, req models.UpdateCommentRequest) error {
	if req.ID != 0 && req.ID != id {
		return apperr.InvalidInput("Comment ID not matching.")
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperr.InvalidInput("Comment content is required.")
	}

	db := s.db.WithContext(ctx)
	c, err := s.authored(db, callerID, id, "You can only edit your own comments.")
	if err != nil {
		return err
	}
	if err := db.Model(c).Update("content", s.policy.Sanitize(req.Content)).Error; err != nil {
		return internal(err, "update comment")
	}
	return nil
}

// Delete removes a comment and, through the foreign key, its replies.
func (s *CommentService) Delete(ctx context.Context, callerID, id int) error {
	db := s.db.WithContext(ctx)
	c, err := s.authored(db, callerID, id, "You can only delete your own comments.")
	if err != nil {
		return err
	}
	if err := db.Delete(c).Error; err != nil {
		return internal(err, "delete comment")
	}
	return nil
}

func (s *CommentService) authored(db *gorm.DB, callerID, id int, denied string) (*models.Comment, error) {
	var c models.Comment
	if err := db.First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "Comment with ID %d not found.", id)
	}
	if c.UserID != callerID {
		return nil, apperr.Forbid("%s", denied)
	}
	return &c, nil
}

func requirePost(db *gorm.DB, id int) error {
	var n int64
	if err := db.Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return internal(err, "check post")
	}
	if n == 0 {
		return apperr.Missing("Post with ID %d not found.", id)
	}
	return nil
}

func views(comments []models.Comment) []models.CommentView {
	out := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, models.NewCommentView(c))
	}
	return out
}
