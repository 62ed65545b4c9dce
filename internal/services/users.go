package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/auth"
	"github.com/librescript/backend/internal/models"
)

type UserService struct {
	db           *gorm.DB
	issuer       *auth.Issuer
	verification *VerificationService
}

func NewUserService(db *gorm.DB, issuer *auth.Issuer, verification *VerificationService) *UserService {
	return &UserService{db: db, issuer: issuer, verification: verification}
}

// Register creates an unverified account, queues the welcome mail carrying its
// first verification code and returns a token for the new user.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return "", nil, apperr.InvalidInput("User data is required.")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&n).Error; err != nil {
		return "", nil, internal(err, "check username")
	}
	if n > 0 {
		return "", nil, apperr.DuplicateOf("Username already exists.")
	}
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&n).Error; err != nil {
		return "", nil, internal(err, "check email")
	}
	if n > 0 {
		return "", nil, apperr.DuplicateOf("Email already exists.")
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return "", nil, err
	}
	code, err := GenerateCode()
	if err != nil {
		return "", nil, internal(err, "generate verification code")
	}
	expiry := s.verification.expiry()

	user := models.User{
		Username:               req.Username,
		FullName:               req.FullName,
		Email:                  req.Email,
		Password:               hash,
		VerificationCode:       &code,
		VerificationCodeExpiry: &expiry,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, apperr.DuplicateOf("Username or email already exists.")
		}
		return "", nil, internal(err, "create user")
	}

	s.verification.sendWelcome(user, code)

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, internal(err, "issue token")
	}
	return token, &user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.Password, password)) {
		return "", apperr.NotAuthorized("Invalid username or password.")
	}
	if err != nil {
		return "", internal(err, "find user")
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", internal(err, "issue token")
	}
	return token, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (s *UserService) Authenticate(token string) (models.Identity, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return models.Identity{}, err
	}
	return claims.Identity(), nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "User with ID %d not found.", id)
	}
	return &user, nil
}

func (s *UserService) Profile(ctx context.Context, userID int) (*models.User, error) {
	return s.GetByID(ctx, userID)
}

// PostsOf lists the posts owned by userID, newest first.
func (s *UserService) PostsOf(ctx context.Context, userID int) ([]models.PostView, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, internal(err, "list user posts")
	}
	return withCommentCounts(s.db.WithContext(ctx), posts)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, lookupErr(err, "User %s not found.", username)
	}
	return &user, nil
}

// UpdateProfile changes the fields present in req. A new email must not belong
// to another account.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, req models.UpdateProfileRequest) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil && *req.Email != user.Email {
		var n int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", *req.Email, userID).Count(&n).Error; err != nil {
			return internal(err, "check email")
		}
		if n > 0 {
			return apperr.DuplicateOf("Email already exists")
		}
		user.Email = *req.Email
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return err
		}
		user.Password = hash
	}

	err = db.Model(user).Select("full_name", "email", "password").Updates(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.DuplicateOf("Email already exists")
	}
	if err != nil {
		return internal(err, "update profile")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.InvalidInput("Password is too long.")
	}
	if err != nil {
		return "", internal(err, "hash password")
	}
	return hash, nil
}
