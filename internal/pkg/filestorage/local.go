package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emre/collabhub/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory where files are stored
	baseURL  string // URL prefix under which stored files are served
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
// Files are addressable under baseURL, mirroring the upload directory layout.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveFileWithPath saves a file into a subdirectory of the storage root. The
// stored name is a UUID so concurrent uploads of the same filename never
// collide.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
			logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	ext := filepath.Ext(fileHeader.Filename)
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	var accessiblePath string
	if subPath != "" {
		accessiblePath = ls.baseURL + "/" + subPath + "/" + uniqueFilename
	} else {
		accessiblePath = ls.baseURL + "/" + uniqueFilename
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", uniqueFilename).
		Str("url", accessiblePath).
		Msg("File saved")
	return accessiblePath, nil
}

// SaveFile saves an uploaded file directly under the storage root
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return ls.SaveFileWithPath(fileHeader, "")
}

// RelativePath strips the base URL from a stored file URL, returning the path
// relative to the storage root as persisted in file records.
func (ls *LocalStorage) RelativePath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	return strings.TrimPrefix(rel, "/")
}

// DeleteFile removes a file from the storage filesystem. It accepts the
// relative path as stored in file records. Deleting a missing file succeeds.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	cleaned := filepath.Clean(filePath)
	if cleaned == "." || cleaned == "/" || strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	physicalPath := filepath.Join(ls.basePath, cleaned)

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}

// GetFullPath returns the filesystem path backing a stored file URL or path
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := ls.RelativePath(fileURL)
	if rel == "" {
		return ""
	}
	return filepath.Join(ls.basePath, filepath.Clean(rel))
}

// GetBaseURL returns the URL prefix under which stored files are served
func (ls *LocalStorage) GetBaseURL() string {
	return ls.baseURL
}
