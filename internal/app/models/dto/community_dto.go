package dto

import (
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

// CreateCommunityRequest represents data for creating a new community
type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=80"`
	Slug        string `json:"slug" binding:"required,min=3,max=60,lowercase"`
	Description string `json:"description" binding:"max=2000"`
	JoinPolicy  string `json:"joinPolicy" binding:"omitempty,oneof=OPEN APPROVAL"`
}

// UpdateCommunityRequest represents data for updating community settings
type UpdateCommunityRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=80"`
	Description string `json:"description" binding:"max=2000"`
	JoinPolicy  string `json:"joinPolicy" binding:"required,oneof=OPEN APPROVAL"`
}

// ListCommunitiesRequest represents filter parameters for listing communities
type ListCommunitiesRequest struct {
	Search string `form:"search"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

// UpdateMemberRoleRequest represents a member role change
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=MEMBER MODERATOR"`
}

// TransferOwnershipRequest names the member taking over a community
type TransferOwnershipRequest struct {
	NewOwnerID int64 `json:"newOwnerId" binding:"required,min=1"`
}

// CommunityResponse represents a community with basic information
type CommunityResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	JoinPolicy  string    `json:"joinPolicy"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommunityListResponse represents a list of communities
type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
}

// MemberResponse represents a community member with their role
type MemberResponse struct {
	UserID      int64     `json:"userId"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// MemberListResponse represents a list of community members
type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

// JoinResponse reports the outcome of a join request
type JoinResponse struct {
	Status string `json:"status" example:"ACTIVE"`
}

// ToCommunityResponse transforms a models.Community to CommunityResponse
func ToCommunityResponse(community *models.Community) CommunityResponse {
	response := CommunityResponse{
		ID:          community.ID,
		Name:        community.Name,
		Slug:        community.Slug,
		Description: community.Description,
		OwnerID:     community.OwnerID,
		JoinPolicy:  string(community.JoinPolicy),
		MemberCount: community.MemberCount,
		CreatedAt:   community.CreatedAt,
	}
	if community.Avatar != nil {
		response.AvatarURL = community.Avatar.FileURL
	}
	return response
}

// ToMemberResponse transforms a models.Membership (with its User loaded)
// to MemberResponse.
func ToMemberResponse(membership *models.Membership) MemberResponse {
	response := MemberResponse{
		UserID:   membership.UserID,
		Role:     string(membership.Role),
		Status:   string(membership.Status),
		JoinedAt: membership.JoinedAt,
	}
	if membership.User != nil {
		response.DisplayName = membership.User.DisplayName
		response.Email = membership.User.Email
	}
	return response
}
