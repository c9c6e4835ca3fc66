package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
	"github.com/emre/collabhub/internal/pkg/dberrors"
)

// MembershipRepository handles database operations for community memberships
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create inserts a membership row
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) (int64, error) {
	query := `
		INSERT INTO memberships (community_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_at
	`

	err := r.db.QueryRow(ctx, query,
		m.CommunityID,
		m.UserID,
		m.Role,
		m.Status,
	).Scan(&m.ID, &m.JoinedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "memberships_community_id_user_id_key") {
			return 0, apperrors.ErrAlreadyMember
		}
		return 0, fmt.Errorf("error creating membership: %w", err)
	}

	return m.ID, nil
}

// Get retrieves a user's membership in a community
func (r *MembershipRepository) Get(ctx context.Context, communityID, userID int64) (*models.Membership, error) {
	query := `
		SELECT id, community_id, user_id, role, status, joined_at
		FROM memberships
		WHERE community_id = $1 AND user_id = $2
	`

	var m models.Membership
	err := r.db.QueryRow(ctx, query, communityID, userID).Scan(
		&m.ID,
		&m.CommunityID,
		&m.UserID,
		&m.Role,
		&m.Status,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotAMember
		}
		return nil, fmt.Errorf("error retrieving membership: %w", err)
	}

	return &m, nil
}

// IsActiveMember reports whether the user holds an active membership
func (r *MembershipRepository) IsActiveMember(ctx context.Context, communityID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM memberships
			WHERE community_id = $1 AND user_id = $2 AND status = 'ACTIVE'
		)`, communityID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking membership: %w", err)
	}
	return exists, nil
}

// ListByCommunity retrieves memberships of a community with user details,
// filtered by status
func (r *MembershipRepository) ListByCommunity(ctx context.Context, communityID int64, status models.MembershipStatus) ([]*models.Membership, error) {
	query := `
		SELECT m.id, m.community_id, m.user_id, m.role, m.status, m.joined_at,
		       u.id, u.email, u.display_name, u.global_role, u.avatar_file_id
		FROM memberships m
		JOIN users u ON m.user_id = u.id
		WHERE m.community_id = $1 AND m.status = $2
		ORDER BY m.joined_at ASC
	`

	rows, err := r.db.Query(ctx, query, communityID, status)
	if err != nil {
		return nil, fmt.Errorf("error listing memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		var m models.Membership
		var u models.User
		err := rows.Scan(
			&m.ID,
			&m.CommunityID,
			&m.UserID,
			&m.Role,
			&m.Status,
			&m.JoinedAt,
			&u.ID,
			&u.Email,
			&u.DisplayName,
			&u.GlobalRole,
			&u.AvatarFileID,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		m.User = &u
		memberships = append(memberships, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}

	return memberships, nil
}

// UpdateRole changes a member's community role
func (r *MembershipRepository) UpdateRole(ctx context.Context, communityID, userID int64, role models.CommunityRole) error {
	result, err := r.db.Exec(ctx,
		`UPDATE memberships SET role = $1 WHERE community_id = $2 AND user_id = $3`,
		role, communityID, userID)
	if err != nil {
		return fmt.Errorf("error updating membership role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotAMember
	}
	return nil
}

// UpdateStatus changes a membership's status (e.g. approving a join request)
func (r *MembershipRepository) UpdateStatus(ctx context.Context, communityID, userID int64, status models.MembershipStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE memberships SET status = $1 WHERE community_id = $2 AND user_id = $3`,
		status, communityID, userID)
	if err != nil {
		return fmt.Errorf("error updating membership status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotAMember
	}
	return nil
}

// Delete removes a membership row
func (r *MembershipRepository) Delete(ctx context.Context, communityID, userID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM memberships WHERE community_id = $1 AND user_id = $2`,
		communityID, userID)
	if err != nil {
		return fmt.Errorf("error deleting membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotAMember
	}
	return nil
}
