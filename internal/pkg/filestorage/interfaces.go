package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile saves a file under the storage root and returns its public URL
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath saves a file under a subdirectory and returns its public URL
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a stored file; deleting a missing file is not an error
	DeleteFile(filePath string) error

	// GetFullPath returns the filesystem path backing a stored file URL or path
	GetFullPath(fileURL string) string

	// GetBaseURL returns the URL prefix under which stored files are served
	GetBaseURL() string
}
