package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/dberrors"
)

// ReactionRepository handles database operations for message reactions
type ReactionRepository struct {
	db *pgxpool.Pool
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Add inserts a reaction row. Adding the same reaction twice is a no-op.
func (r *ReactionRepository) Add(ctx context.Context, reaction *models.Reaction) error {
	query := `
		INSERT INTO reactions (message_id, user_id, emoji)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		reaction.MessageID,
		reaction.UserID,
		reaction.Emoji,
	).Scan(&reaction.ID, &reaction.CreatedAt)

	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("error adding reaction: %w", err)
	}
	return nil
}

// Remove deletes a reaction row, reporting whether one existed
func (r *ReactionRepository) Remove(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3`,
		messageID, userID, emoji)
	if err != nil {
		return false, fmt.Errorf("error removing reaction: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Exists reports whether a user already reacted with the given emoji
func (r *ReactionRepository) Exists(ctx context.Context, messageID, userID int64, emoji string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3
		)`, messageID, userID, emoji).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reaction: %w", err)
	}
	return exists, nil
}

// ListByMessage retrieves reactions of a single message in insertion order
func (r *ReactionRepository) ListByMessage(ctx context.Context, messageID int64) ([]*models.Reaction, error) {
	reactions, err := r.listByMessages(ctx, []int64{messageID})
	if err != nil {
		return nil, err
	}
	return reactions[messageID], nil
}

// ListByMessages retrieves reactions of several messages at once, keyed by
// message ID, for hydrating channel listings without N queries.
func (r *ReactionRepository) ListByMessages(ctx context.Context, messageIDs []int64) (map[int64][]*models.Reaction, error) {
	if len(messageIDs) == 0 {
		return map[int64][]*models.Reaction{}, nil
	}
	return r.listByMessages(ctx, messageIDs)
}

func (r *ReactionRepository) listByMessages(ctx context.Context, messageIDs []int64) (map[int64][]*models.Reaction, error) {
	query := `
		SELECT id, message_id, user_id, emoji, created_at
		FROM reactions
		WHERE message_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, messageIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing reactions: %w", err)
	}
	defer rows.Close()

	byMessage := make(map[int64][]*models.Reaction)
	for rows.Next() {
		var reaction models.Reaction
		err := rows.Scan(
			&reaction.ID,
			&reaction.MessageID,
			&reaction.UserID,
			&reaction.Emoji,
			&reaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reaction row: %w", err)
		}
		byMessage[reaction.MessageID] = append(byMessage[reaction.MessageID], &reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reaction rows: %w", err)
	}

	return byMessage, nil
}
