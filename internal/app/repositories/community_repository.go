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

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// Create inserts a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) (int64, error) {
	query := `
		INSERT INTO communities (name, slug, description, owner_id, join_policy)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		community.Name,
		community.Slug,
		community.Description,
		community.OwnerID,
		community.JoinPolicy,
	).Scan(&community.ID, &community.CreatedAt, &community.UpdatedAt)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCommunityAlreadyExists
		}
		return 0, fmt.Errorf("error creating community: %w", err)
	}

	return community.ID, nil
}

func scanCommunity(row pgx.Row) (*models.Community, error) {
	var c models.Community
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.OwnerID,
		&c.JoinPolicy,
		&c.AvatarFileID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.MemberCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("error scanning community: %w", err)
	}
	return &c, nil
}

const communitySelect = `
	SELECT c.id, c.name, c.slug, c.description, c.owner_id, c.join_policy,
	       c.avatar_file_id, c.created_at, c.updated_at,
	       (SELECT COUNT(*) FROM memberships m WHERE m.community_id = c.id AND m.status = 'ACTIVE') AS member_count
	FROM communities c
`

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	return scanCommunity(r.db.QueryRow(ctx, communitySelect+` WHERE c.id = $1`, id))
}

// GetBySlug retrieves a community by its URL slug
func (r *CommunityRepository) GetBySlug(ctx context.Context, slug string) (*models.Community, error) {
	return scanCommunity(r.db.QueryRow(ctx, communitySelect+` WHERE c.slug = $1`, slug))
}

// List retrieves communities, optionally filtered by a search term over name
// and description, ordered by member count
func (r *CommunityRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Community, error) {
	queryBuilder := squirrel.Select(
		"c.id", "c.name", "c.slug", "c.description", "c.owner_id", "c.join_policy",
		"c.avatar_file_id", "c.created_at", "c.updated_at",
		"(SELECT COUNT(*) FROM memberships m WHERE m.community_id = c.id AND m.status = 'ACTIVE') AS member_count",
	).
		From("communities c").
		OrderBy("member_count DESC", "c.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	if search != "" {
		pattern := "%" + search + "%"
		queryBuilder = queryBuilder.Where(
			squirrel.Or{
				squirrel.ILike{"c.name": pattern},
				squirrel.ILike{"c.description": pattern},
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

	var communities []*models.Community
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating community rows: %w", err)
	}

	return communities, nil
}

// Update modifies a community's metadata
func (r *CommunityRepository) Update(ctx context.Context, community *models.Community) error {
	query := `
		UPDATE communities
		SET name = $1, description = $2, join_policy = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query,
		community.Name,
		community.Description,
		community.JoinPolicy,
		community.ID,
	)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCommunityAlreadyExists
		}
		return fmt.Errorf("error updating community: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// UpdateOwner transfers community ownership
func (r *CommunityRepository) UpdateOwner(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE communities SET owner_id = $1, updated_at = NOW() WHERE id = $2`,
		ownerID, id)
	if err != nil {
		return fmt.Errorf("error transferring community ownership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// UpdateAvatar sets or clears the community avatar file reference
func (r *CommunityRepository) UpdateAvatar(ctx context.Context, id int64, fileID *int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE communities SET avatar_file_id = $1, updated_at = NOW() WHERE id = $2`,
		fileID, id)
	if err != nil {
		return fmt.Errorf("error updating community avatar: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// Delete removes a community and everything hanging off it (cascades)
func (r *CommunityRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting community: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}
