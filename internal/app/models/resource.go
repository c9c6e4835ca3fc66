package models

import "time"

// ResourceKind represents the type of shared resource
type ResourceKind string

const (
	ResourceKindFile ResourceKind = "FILE"
	ResourceKindLink ResourceKind = "LINK"
)

// Resource represents a file or link shared within a community
type Resource struct {
	ID            int64        `json:"id" db:"id"`
	CommunityID   int64        `json:"communityId" db:"community_id"`
	UploaderID    int64        `json:"uploaderId" db:"uploader_id"`
	Kind          ResourceKind `json:"kind" db:"kind"`
	Title         string       `json:"title" db:"title"`
	Description   string       `json:"description" db:"description"`
	URL           *string      `json:"url,omitempty" db:"url"`
	FileID        *int64       `json:"fileId,omitempty" db:"file_id"`
	DownloadCount int64        `json:"downloadCount" db:"download_count"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time    `json:"updatedAt" db:"updated_at"`

	// Related entities
	Uploader  *User `json:"uploader,omitempty"`
	File      *File `json:"file,omitempty"`
	LikeCount int   `json:"likeCount"`
	LikedByMe bool  `json:"likedByMe"`
}

// ResourceLike represents a user liking a resource
type ResourceLike struct {
	ID         int64     `json:"id" db:"id"`
	ResourceID int64     `json:"resourceId" db:"resource_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
