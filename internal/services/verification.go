package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/librescript/backend/internal/apperr"
	"github.com/librescript/backend/internal/cache"
	"github.com/librescript/backend/internal/config"
	"github.com/librescript/backend/internal/mail"
	"github.com/librescript/backend/internal/models"
)

const (
	CodeLength = 6
	CodeTTL    = 15 * time.Minute
)

var codeLimit = big.NewInt(1_000_000)

// GenerateCode returns a zero-padded six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeLimit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type VerificationService struct {
	db        *gorm.DB
	mailer    Mailer
	cooldowns cache.Store
	cooldown  time.Duration
	verifyURL string
	log       *zap.Logger
	now       func() time.Time
}

func NewVerificationService(db *gorm.DB, mailer Mailer, cooldowns cache.Store, cfg config.Config, log *zap.Logger) *VerificationService {
	return &VerificationService{
		db:        db,
		mailer:    mailer,
		cooldowns: cooldowns,
		cooldown:  cfg.ResendCooldown,
		verifyURL: cfg.VerifyURL,
		log:       log,
		now:       time.Now,
	}
}

func (s *VerificationService) expiry() time.Time {
	return s.now().UTC().Add(CodeTTL)
}

func (s *VerificationService) Status(ctx context.Context, userID int) (bool, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Verified, nil
}

// SendCode replaces the user's code with a fresh one and mails it. Requests
// inside the resend cooldown are refused.
func (s *VerificationService) SendCode(ctx context.Context, userID int) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.Verified {
		return apperr.InvalidInput("Email is already verified.")
	}
	if s.cooldown > 0 && !s.cooldowns.TrySet(ctx, fmt.Sprintf("verify:cooldown:%d", userID), s.cooldown) {
		return apperr.InvalidInput("Please wait before requesting a new code.")
	}

	code, err := GenerateCode()
	if err != nil {
		return internal(err, "generate verification code")
	}
	expiry := s.expiry()
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"verification_code":        code,
		"verification_code_expiry": expiry,
	}).Error
	if err != nil {
		return internal(err, "store verification code")
	}

	msg, err := mail.VerificationCodeMessage(recipient(*user), code, CodeTTL, s.verifyURL)
	if err != nil {
		return internal(err, "render verification mail")
	}
	s.mailer.Enqueue(msg)
	return nil
}

// Verify marks the user verified when code matches and has not expired. A
// code can be used once.
func (s *VerificationService) Verify(ctx context.Context, userID int, code string) error {
	if !validCode(code) {
		return apperr.InvalidInput("Verification code must be %d digits.", CodeLength)
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.Verified {
		return apperr.InvalidInput("Email is already verified.")
	}

	invalid := apperr.InvalidInput("Invalid or expired verification code.")
	if user.VerificationCode == nil || *user.VerificationCode != code {
		return invalid
	}
	if user.VerificationCodeExpiry == nil || s.now().After(*user.VerificationCodeExpiry) {
		return invalid
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verification_code = ?", userID, code).
		Updates(map[string]any{
			"verified":                 true,
			"verification_code":        nil,
			"verification_code_expiry": nil,
		})
	if res.Error != nil {
		return internal(res.Error, "mark verified")
	}
	if res.RowsAffected == 0 {
		return invalid
	}
	return nil
}

func (s *VerificationService) sendWelcome(user models.User, code string) {
	msg, err := mail.WelcomeMessage(recipient(user), code, CodeTTL, s.verifyURL)
	if err != nil {
		s.log.Error("render welcome mail", zap.Int("user_id", user.ID), zap.Error(err))
		return
	}
	s.mailer.Enqueue(msg)
}

func (s *VerificationService) user(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "User with ID %d not found.", id)
	}
	return &user, nil
}

func recipient(u models.User) mail.Recipient {
	return mail.Recipient{Username: u.Username, FullName: u.FullName, Email: u.Email, CreatedAt: u.CreatedAt}
}

func validCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
