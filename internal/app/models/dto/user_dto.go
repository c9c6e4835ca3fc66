package dto

import (
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=2,max=60"`
}

// UserResponse represents basic user information
type UserResponse struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"displayName"`
	GlobalRole   string     `json:"globalRole"`
	AvatarFileID *int64     `json:"avatarFileId,omitempty"`
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ToUserResponse transforms a models.User to UserResponse
func ToUserResponse(user *models.User) UserResponse {
	response := UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		GlobalRole:   string(user.GlobalRole),
		AvatarFileID: user.AvatarFileID,
		LastLoginAt:  user.LastLoginAt,
		CreatedAt:    user.CreatedAt,
	}
	if user.Avatar != nil {
		response.AvatarURL = user.Avatar.FileURL
	}
	return response
}
