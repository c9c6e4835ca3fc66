package models

import "time"

// JoinPolicy controls how new members enter a community
type JoinPolicy string

const (
	JoinPolicyOpen     JoinPolicy = "OPEN"
	JoinPolicyApproval JoinPolicy = "APPROVAL"
)

// Community represents a collaboration space with its own chat, resources and events
type Community struct {
	ID           int64      `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Slug         string     `json:"slug" db:"slug"`
	Description  string     `json:"description" db:"description"`
	OwnerID      int64      `json:"ownerId" db:"owner_id"`
	JoinPolicy   JoinPolicy `json:"joinPolicy" db:"join_policy"`
	AvatarFileID *int64     `json:"avatarFileId,omitempty" db:"avatar_file_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`

	// Related entities
	Owner       *User   `json:"owner,omitempty"`
	Avatar      *File   `json:"avatar,omitempty"`
	MemberCount int     `json:"memberCount,omitempty"`
	Members     []*User `json:"members,omitempty"`
}

// MembershipStatus tracks pending join requests for APPROVAL communities
type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "ACTIVE"
	MembershipStatusPending MembershipStatus = "PENDING"
)

// Membership represents a user's membership in a community, including their
// per-community role.
type Membership struct {
	ID          int64            `json:"id" db:"id"`
	CommunityID int64            `json:"communityId" db:"community_id"`
	UserID      int64            `json:"userId" db:"user_id"`
	Role        CommunityRole    `json:"role" db:"role"`
	Status      MembershipStatus `json:"status" db:"status"`
	JoinedAt    time.Time        `json:"joinedAt" db:"joined_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
