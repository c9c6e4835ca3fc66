package dto

import (
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

// CreateResourceRequest represents data for sharing a new resource.
// FILE resources carry the upload in the multipart form, LINK resources
// carry a URL.
type CreateResourceRequest struct {
	Kind        string `json:"kind" form:"kind" binding:"required,oneof=FILE LINK"`
	Title       string `json:"title" form:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" form:"description" binding:"max=2000"`
	URL         string `json:"url" form:"url" binding:"required_if=Kind LINK,omitempty,url"`
}

// UpdateResourceRequest represents a resource metadata edit
type UpdateResourceRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	URL         string `json:"url" binding:"omitempty,url"`
}

// ListResourcesRequest represents filter parameters for listing resources
type ListResourcesRequest struct {
	Kind   string `form:"kind" binding:"omitempty,oneof=FILE LINK"`
	Search string `form:"search"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

// ResourceResponse represents a shared resource
type ResourceResponse struct {
	ID            int64     `json:"id"`
	CommunityID   int64     `json:"communityId"`
	UploaderID    int64     `json:"uploaderId"`
	UploaderName  string    `json:"uploaderName,omitempty"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           *string   `json:"url,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	FileURL       string    `json:"fileUrl,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	MimeType      string    `json:"mimeType,omitempty"`
	DownloadCount int64     `json:"downloadCount"`
	LikeCount     int       `json:"likeCount"`
	LikedByMe     bool      `json:"likedByMe"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ResourceListResponse represents a list of resources
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
}

// LikeResponse reports the like state after a like or unlike
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// ToResourceResponse transforms a models.Resource to ResourceResponse
func ToResourceResponse(resource *models.Resource) ResourceResponse {
	response := ResourceResponse{
		ID:            resource.ID,
		CommunityID:   resource.CommunityID,
		UploaderID:    resource.UploaderID,
		Kind:          string(resource.Kind),
		Title:         resource.Title,
		Description:   resource.Description,
		URL:           resource.URL,
		DownloadCount: resource.DownloadCount,
		LikeCount:     resource.LikeCount,
		LikedByMe:     resource.LikedByMe,
		CreatedAt:     resource.CreatedAt,
		UpdatedAt:     resource.UpdatedAt,
	}

	if resource.Uploader != nil {
		response.UploaderName = resource.Uploader.DisplayName
	}

	if resource.File != nil {
		response.FileName = resource.File.FileName
		response.FileURL = resource.File.FileURL
		response.FileSize = resource.File.FileSize
		response.MimeType = resource.File.MimeType
	}

	return response
}

// ToResourceListResponse transforms a slice of resources to ResourceListResponse
func ToResourceListResponse(resources []*models.Resource) ResourceListResponse {
	response := ResourceListResponse{Resources: make([]ResourceResponse, 0, len(resources))}
	for _, resource := range resources {
		response.Resources = append(response.Resources, ToResourceResponse(resource))
	}
	return response
}
