package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FullName string `gorm:"size:100" json:"fullName"`
	Email    string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // bcrypt hash

	// Email verification
	Verified               bool       `gorm:"not null;default:false" json:"verified"`
	VerificationCode       *string    `gorm:"size:6" json:"-"`
	VerificationCodeExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Summary returns the lightweight author projection embedded in post and comment responses.
func (u User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

type AuthorSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest only touches the fields that are present.
type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// Identity is what a valid bearer token resolves to.
type Identity struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProfileResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Profile() ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
	}
}

type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// PublicProfile is what other users may see of an account.
type PublicProfile struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Verified: u.Verified, CreatedAt: u.CreatedAt}
}
