// Package models contains the persisted entities, view shapes and the
// application error type.
package models

import "time"

// User represents an account. Denormalized follower/following/post counters
// are maintained transactionally alongside their edges.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null" json:"name"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Bio        string `json:"bio"`
	Avatar     string `json:"avatar"`
	CoverPhoto string `json:"cover_photo"`
	Location   string `json:"location"`
	Website    string `json:"website"`
	Verified   bool   `gorm:"default:false" json:"verified"`

	EmailVerified       bool       `gorm:"default:false" json:"email_verified"`
	VerificationToken   string     `json:"-"`
	VerificationExpires *time.Time `json:"-"`

	FollowersCount int `gorm:"default:0" json:"followers_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	PostsCount     int `gorm:"default:0" json:"posts_count"`
}

// RefreshToken is a server-side record of an issued refresh token, so tokens
// can be rotated and revoked.
type RefreshToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
