package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
	"github.com/emre/collabhub/internal/pkg/dberrors"
)

// ResourceRepository handles database operations for shared resources
type ResourceRepository struct {
	db *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) (int64, error) {
	query := `
		INSERT INTO resources (community_id, uploader_id, kind, title, description, url, file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		resource.CommunityID,
		resource.UploaderID,
		resource.Kind,
		resource.Title,
		resource.Description,
		resource.URL,
		resource.FileID,
	).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt)

	if err != nil {
		return 0, fmt.Errorf("error creating resource: %w", err)
	}

	return resource.ID, nil
}

// GetByID retrieves a resource with uploader, file, and like details.
// viewerID drives the likedByMe flag.
func (r *ResourceRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error) {
	query := resourceSelect + ` WHERE r.id = $2`

	resource, err := r.scanResource(r.db.QueryRow(ctx, query, viewerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSharedResourceNotFound
		}
		return nil, err
	}
	return resource, nil
}

const resourceSelect = `
	SELECT r.id, r.community_id, r.uploader_id, r.kind, r.title, r.description,
	       r.url, r.file_id, r.download_count, r.created_at, r.updated_at,
	       u.display_name,
	       f.file_name, f.file_url, f.mime_type, f.file_size,
	       (SELECT COUNT(*) FROM resource_likes rl WHERE rl.resource_id = r.id) AS like_count,
	       EXISTS(SELECT 1 FROM resource_likes rl WHERE rl.resource_id = r.id AND rl.user_id = $1) AS liked_by_me
	FROM resources r
	LEFT JOIN users u ON r.uploader_id = u.id
	LEFT JOIN files f ON r.file_id = f.id
`

func (r *ResourceRepository) scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	var uploaderName *string
	var fileName, fileURL, mimeType *string
	var fileSize *int64

	err := row.Scan(
		&res.ID,
		&res.CommunityID,
		&res.UploaderID,
		&res.Kind,
		&res.Title,
		&res.Description,
		&res.URL,
		&res.FileID,
		&res.DownloadCount,
		&res.CreatedAt,
		&res.UpdatedAt,
		&uploaderName,
		&fileName,
		&fileURL,
		&mimeType,
		&fileSize,
		&res.LikeCount,
		&res.LikedByMe,
	)
	if err != nil {
		return nil, err
	}

	if uploaderName != nil {
		res.Uploader = &models.User{ID: res.UploaderID, DisplayName: *uploaderName}
	}

	if res.FileID != nil && fileName != nil {
		file := &models.File{ID: *res.FileID, FileName: *fileName}
		if fileURL != nil {
			file.FileURL = *fileURL
		}
		if mimeType != nil {
			file.MimeType = *mimeType
		}
		if fileSize != nil {
			file.FileSize = *fileSize
		}
		res.File = file
	}

	return &res, nil
}

// ResourceFilter narrows a resource listing
type ResourceFilter struct {
	Kind   *models.ResourceKind
	Search string
	Limit  int
	Offset int
}

// List retrieves a community's resources newest first with optional filters
func (r *ResourceRepository) List(ctx context.Context, communityID, viewerID int64, filter ResourceFilter) ([]*models.Resource, error) {
	queryBuilder := squirrel.Select(
		"r.id", "r.community_id", "r.uploader_id", "r.kind", "r.title", "r.description",
		"r.url", "r.file_id", "r.download_count", "r.created_at", "r.updated_at",
		"u.display_name",
		"f.file_name", "f.file_url", "f.mime_type", "f.file_size",
		"(SELECT COUNT(*) FROM resource_likes rl WHERE rl.resource_id = r.id) AS like_count",
	).
		Column(squirrel.Expr(
			"EXISTS(SELECT 1 FROM resource_likes rl WHERE rl.resource_id = r.id AND rl.user_id = ?) AS liked_by_me",
			viewerID)).
		From("resources r").
		LeftJoin("users u ON r.uploader_id = u.id").
		LeftJoin("files f ON r.file_id = f.id").
		Where("r.community_id = ?", communityID).
		OrderBy("r.created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Kind != nil {
		queryBuilder = queryBuilder.Where("r.kind = ?", *filter.Kind)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		queryBuilder = queryBuilder.Where(
			squirrel.Or{
				squirrel.ILike{"r.title": pattern},
				squirrel.ILike{"r.description": pattern},
			})
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		res, err := r.scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning resource row: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource rows: %w", err)
	}

	return resources, nil
}

// Update modifies a resource's editable fields
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	query := `
		UPDATE resources
		SET title = $1, description = $2, url = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query,
		resource.Title,
		resource.Description,
		resource.URL,
		resource.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating resource: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSharedResourceNotFound
	}
	return nil
}

// Delete removes a resource
func (r *ResourceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting resource: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSharedResourceNotFound
	}
	return nil
}

// IncrementDownloadCount bumps the download counter
func (r *ResourceRepository) IncrementDownloadCount(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE resources SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error incrementing download count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSharedResourceNotFound
	}
	return nil
}

// AddLike records a user's like. Liking twice is a no-op.
func (r *ResourceRepository) AddLike(ctx context.Context, resourceID, userID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO resource_likes (resource_id, user_id) VALUES ($1, $2)`,
		resourceID, userID)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrSharedResourceNotFound
		}
		return fmt.Errorf("error adding like: %w", err)
	}
	return nil
}

// RemoveLike removes a user's like, reporting whether one existed
func (r *ResourceRepository) RemoveLike(ctx context.Context, resourceID, userID int64) (bool, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM resource_likes WHERE resource_id = $1 AND user_id = $2`,
		resourceID, userID)
	if err != nil {
		return false, fmt.Errorf("error removing like: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
