package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/cache"
	"github.com/librescript/backend/internal/config"
	"github.com/librescript/backend/internal/database/dbtest"
	"github.com/librescript/backend/internal/mail"
	"github.com/librescript/backend/internal/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Enqueue(msg mail.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return true
}

func (m *recordingMailer) last() mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	db           *gorm.DB
	mailer       *recordingMailer
	issuer       *auth.Issuer
	users        *UserService
	posts        *PostService
	comments     *CommentService
	categories   *CategoryService
	verification *VerificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	mailer := &recordingMailer{}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	cfg := config.Config{ResendCooldown: time.Minute, VerifyURL: "http://localhost/verify"}
	verification := NewVerificationService(db, mailer, cache.NewMemory(), cfg, zap.NewNop())

	return &fixture{
		db:           db,
		mailer:       mailer,
		issuer:       issuer,
		users:        NewUserService(db, issuer, verification),
		posts:        NewPostService(db, nil),
		comments:     NewCommentService(db, nil),
		categories:   NewCategoryService(db),
		verification: verification,
	}
}

func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	_, user, err := f.users.Register(context.Background(), models.RegisterRequest{
		Username: username,
		FullName: username + " Doe",
		Password: "secret-" + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) post(t *testing.T, owner *models.User, title string) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), owner.ID, models.PostRequest{Title: title, Content: "body"})
	require.NoError(t, err)
	return p
}
