package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/mail"
	"github.com/librescript/backend/internal/models"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, user, err := f.users.Register(ctx, models.RegisterRequest{
		Username: "alice", FullName: "Alice A", Password: "pw123456", Email: "alice@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, user.Verified)
	require.NotNil(t, user.VerificationCode)
	assert.Len(t, *user.VerificationCode, CodeLength)
	assert.NotEqual(t, "pw123456", user.Password)
	assert.True(t, auth.CheckPassword(user.Password, "pw123456"))

	welcome := f.mailer.last()
	assert.Equal(t, mail.KindWelcome, welcome.Kind)
	assert.Equal(t, "alice@example.com", welcome.To)
	assert.Equal(t, *user.VerificationCode, welcome.Code)

	login, err := f.users.Login(ctx, "alice", "pw123456")
	require.NoError(t, err)
	id, err := f.users.Authenticate(login)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: user.ID, Username: "alice", Email: "alice@example.com"}, id)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	_, _, err := f.users.Register(ctx, models.RegisterRequest{
		Username: "alice", FullName: "Other", Password: "pw", Email: "other@example.com",
	})
	require.True(t, apperr.Is(err, apperr.Duplicate))
	assert.Equal(t, "Username already exists.", apperr.Message(err))

	_, _, err = f.users.Register(ctx, models.RegisterRequest{
		Username: "bob", FullName: "Bob", Password: "pw", Email: "alice@example.com",
	})
	require.True(t, apperr.Is(err, apperr.Duplicate))
	assert.Equal(t, "Email already exists.", apperr.Message(err))

	_, _, err = f.users.Register(ctx, models.RegisterRequest{Username: "carol"})
	assert.True(t, apperr.Is(err, apperr.Invalid))
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Login(context.Background(), "alice", "wrong")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
	_, err = f.users.Login(context.Background(), "nobody", "secret-alice")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
	assert.Equal(t, "Invalid username or password.", apperr.Message(err))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Authenticate("not-a-token")
	assert.True(t, apperr.Is(err, apperr.Unauthorized))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	taken := "bob@example.com"
	err := f.users.UpdateProfile(ctx, alice.ID, models.UpdateProfileRequest{Email: &taken})
	assert.True(t, apperr.Is(err, apperr.Duplicate))

	name, email, pw := "Alice Liddell", "liddell@example.com", "new-password"
	require.NoError(t, f.users.UpdateProfile(ctx, alice.ID, models.UpdateProfileRequest{
		FullName: &name, Email: &email, Password: &pw,
	}))

	got, err := f.users.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)
	assert.Equal(t, email, got.Email)
	_, err = f.users.Login(ctx, "alice", pw)
	assert.NoError(t, err)

	err = f.users.UpdateProfile(ctx, 999, models.UpdateProfileRequest{FullName: &name})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestLookupAndPostsOf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.post(t, alice, "first")
	f.post(t, alice, "second")
	f.post(t, bob, "other")

	byName, err := f.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = f.users.GetByUsername(ctx, "ALICE")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	_, err = f.users.GetByID(ctx, 12345)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	posts, err := f.users.PostsOf(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	assert.Equal(t, "alice", posts[0].Author.Username)
}
