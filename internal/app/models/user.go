package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Email        string     `json:"email" db:"email" example:"user@example.com"`              // User's email address
	Password     string     `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	DisplayName  string     `json:"displayName" db:"display_name" example:"Jordan Mills"`     // Name shown next to messages
	GlobalRole   GlobalRole `json:"globalRole" db:"global_role" example:"USER"`               // Platform-wide role (USER or ADMIN)
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`                   // Whether the user account is active
	AvatarFileID *int64     `json:"avatarFileId,omitempty" db:"avatar_file_id"`               // Avatar file reference (nullable)
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`                 // Timestamp of the last login (nullable)
	CreatedAt    time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the user was created
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the user was last updated

	// Related entities
	Avatar *File `json:"avatar,omitempty"`
}

// IsAdmin reports whether the user holds the platform admin role.
func (u *User) IsAdmin() bool {
	return u.GlobalRole == GlobalRoleAdmin
}

// RefreshToken represents a persisted refresh token row
type RefreshToken struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
