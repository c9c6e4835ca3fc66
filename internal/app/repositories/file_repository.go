package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// FileRepository handles database operations for file metadata
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a file metadata record
func (r *FileRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	query := `
		INSERT INTO files (file_name, file_path, file_url, file_size, mime_type, scope, scope_id, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		file.FileName,
		file.FilePath,
		file.FileURL,
		file.FileSize,
		file.MimeType,
		file.Scope,
		file.ScopeID,
		file.UploadedBy,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return 0, fmt.Errorf("error creating file record: %w", err)
	}

	return file.ID, nil
}

// GetByID retrieves a file metadata record
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `
		SELECT id, file_name, file_path, file_url, file_size, mime_type,
		       scope, scope_id, uploaded_by, created_at, updated_at
		FROM files
		WHERE id = $1
	`

	var file models.File
	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.FileName,
		&file.FilePath,
		&file.FileURL,
		&file.FileSize,
		&file.MimeType,
		&file.Scope,
		&file.ScopeID,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving file record: %w", err)
	}

	return &file, nil
}

// Delete removes a file metadata record
func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting file record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
