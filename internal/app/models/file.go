package models

import "time"

// FileScope represents which kind of entity a stored file belongs to
type FileScope string

const (
	FileScopeChatMessage FileScope = "CHAT_MESSAGE"
	FileScopeResource    FileScope = "RESOURCE"
	FileScopeAvatar      FileScope = "AVATAR"
	FileScopeCommunity   FileScope = "COMMUNITY"
)

// File represents a stored file's metadata
type File struct {
	ID         int64     `json:"id" db:"id"`
	FileName   string    `json:"fileName" db:"file_name"`
	FilePath   string    `json:"filePath" db:"file_path"`
	FileURL    string    `json:"fileUrl" db:"file_url"`
	FileSize   int64     `json:"fileSize" db:"file_size"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	Scope      FileScope `json:"scope" db:"scope"`
	ScopeID    int64     `json:"scopeId" db:"scope_id"`
	UploadedBy int64     `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
