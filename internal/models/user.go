package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя маркетплейса.
type User struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio            *string    `db:"bio" json:"bio,omitempty"`
	Location       *string    `db:"location" json:"location,omitempty"`
	PostalCode     *string    `db:"postal_code" json:"postal_code,omitempty"`
	IsAdmin        bool       `db:"is_admin" json:"is_admin"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	IsVerified     bool       `db:"is_verified" json:"is_verified"`
	FollowersCount int        `db:"followers_count" json:"followers_count"`
	FollowingCount int        `db:"following_count" json:"following_count"`
	ListingsCount  int        `db:"listings_count" json:"listings_count"`
	SalesCount     int        `db:"sales_count" json:"sales_count"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PublicProfile публичное представление пользователя без контактов.
type PublicProfile struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	Location       *string   `json:"location,omitempty"`
	IsVerified     bool      `json:"is_verified"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	ListingsCount  int       `json:"listings_count"`
	SalesCount     int       `json:"sales_count"`
	AverageRating  float64   `json:"average_rating"`
	ReviewCount    int       `json:"review_count"`
	IsFollowing    bool      `json:"is_following"`
	CreatedAt      time.Time `json:"created_at"`
}

// Public возвращает публичный профиль пользователя.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		FullName:       u.FullName,
		AvatarURL:      u.AvatarURL,
		Bio:            u.Bio,
		Location:       u.Location,
		IsVerified:     u.IsVerified,
		FollowersCount: u.FollowersCount,
		FollowingCount: u.FollowingCount,
		ListingsCount:  u.ListingsCount,
		SalesCount:     u.SalesCount,
		CreatedAt:      u.CreatedAt,
	}
}

// UserSummary краткие данные пользователя для списков.
type UserSummary struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"full_name"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	IsVerified bool      `db:"is_verified" json:"is_verified"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserFilter параметры выборки пользователей в админке.
type UserFilter struct {
	Search   string
	IsActive *bool
	IsAdmin  *bool
	Limit    int
	Offset   int
}
