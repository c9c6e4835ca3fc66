package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// MessageRepository handles database operations for chat messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageInsert = `
	INSERT INTO messages (
		community_id, sender_id, kind, content, file_id, thread_root_id,
		is_question, reply_to_id, reply_to_author, reply_to_excerpt
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at
`

// Create inserts a new channel message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) (int64, error) {
	err := r.db.QueryRow(ctx, messageInsert,
		message.CommunityID,
		message.SenderID,
		message.Kind,
		message.Content,
		message.FileID,
		message.ThreadRootID,
		message.IsQuestion,
		message.ReplyToID,
		message.ReplyToAuthor,
		message.ReplyToExcerpt,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		return 0, fmt.Errorf("error creating message: %w", err)
	}

	return message.ID, nil
}

// CreateThreadReply inserts a thread reply and bumps the root's reply count
// in the same transaction.
func (r *MessageRepository) CreateThreadReply(ctx context.Context, message *models.Message) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, messageInsert,
		message.CommunityID,
		message.SenderID,
		message.Kind,
		message.Content,
		message.FileID,
		message.ThreadRootID,
		message.IsQuestion,
		message.ReplyToID,
		message.ReplyToAuthor,
		message.ReplyToExcerpt,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("error creating thread reply: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE messages SET reply_count = reply_count + 1 WHERE id = $1`,
		*message.ThreadRootID)
	if err != nil {
		return 0, fmt.Errorf("error incrementing reply count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return 0, apperrors.ErrMessageNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("error committing thread reply: %w", err)
	}

	return message.ID, nil
}

// GetByID retrieves a message by its ID with sender and file details
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.id = $1`

	messages, err := r.queryJoined(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, apperrors.ErrMessageNotFound
	}
	return messages[0], nil
}

// ChannelFilter narrows a channel message listing
type ChannelFilter struct {
	Before   *time.Time
	After    *time.Time
	SenderID *int64
	Limit    int
}

// ListChannel retrieves top-level messages of a community channel, newest
// first, with sender and file details joined in. Thread replies are excluded.
func (r *MessageRepository) ListChannel(ctx context.Context, communityID int64, filter ChannelFilter) ([]*models.Message, error) {
	queryBuilder := squirrel.Select(
		"m.id", "m.community_id", "m.sender_id", "m.kind", "m.content", "m.file_id",
		"m.thread_root_id", "m.reply_count", "m.pinned", "m.pinned_by", "m.pinned_at",
		"m.is_question", "m.answer_id", "m.edited",
		"m.reply_to_id", "m.reply_to_author", "m.reply_to_excerpt",
		"m.created_at", "m.updated_at",
		"u.display_name", "u.avatar_file_id",
		"f.file_name", "f.file_url", "f.mime_type", "f.file_size",
	).
		From("messages m").
		LeftJoin("users u ON m.sender_id = u.id").
		LeftJoin("files f ON m.file_id = f.id").
		Where("m.community_id = ?", communityID).
		Where("m.thread_root_id IS NULL").
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(uint64(filter.Limit)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Before != nil {
		queryBuilder = queryBuilder.Where("m.created_at < ?", *filter.Before)
	}

	if filter.After != nil {
		queryBuilder = queryBuilder.Where("m.created_at > ?", *filter.After)
	}

	if filter.SenderID != nil {
		queryBuilder = queryBuilder.Where("m.sender_id = ?", *filter.SenderID)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryJoined(ctx, sql, args...)
}

// ListThread retrieves the replies of a thread in ascending creation order
func (r *MessageRepository) ListThread(ctx context.Context, rootID int64) ([]*models.Message, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.thread_root_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`
	return r.queryJoined(ctx, query, rootID)
}

// ListPinned retrieves a community's pinned messages, most recently pinned first
func (r *MessageRepository) ListPinned(ctx context.Context, communityID int64) ([]*models.Message, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.community_id = $1 AND m.pinned
		ORDER BY m.pinned_at DESC
	`
	return r.queryJoined(ctx, query, communityID)
}

// ListQuestions retrieves a community's question messages, optionally only
// the unanswered ones
func (r *MessageRepository) ListQuestions(ctx context.Context, communityID int64, unansweredOnly bool) ([]*models.Message, error) {
	query := `
		SELECT ` + joinedColumns + `
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id
		LEFT JOIN files f ON m.file_id = f.id
		WHERE m.community_id = $1 AND m.is_question
	`
	if unansweredOnly {
		query += ` AND m.answer_id IS NULL`
	}
	query += ` ORDER BY m.created_at DESC`

	return r.queryJoined(ctx, query, communityID)
}

const joinedColumns = `
	m.id, m.community_id, m.sender_id, m.kind, m.content, m.file_id,
	m.thread_root_id, m.reply_count, m.pinned, m.pinned_by, m.pinned_at,
	m.is_question, m.answer_id, m.edited,
	m.reply_to_id, m.reply_to_author, m.reply_to_excerpt,
	m.created_at, m.updated_at,
	u.display_name, u.avatar_file_id,
	f.file_name, f.file_url, f.mime_type, f.file_size
`

// queryJoined runs a message query selecting joinedColumns and hydrates
// sender and file relations from the joined values.
func (r *MessageRepository) queryJoined(ctx context.Context, sql string, args ...interface{}) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		var senderName *string
		var senderAvatar *int64
		var fileName, fileURL, mimeType *string
		var fileSize *int64

		err := rows.Scan(
			&m.ID,
			&m.CommunityID,
			&m.SenderID,
			&m.Kind,
			&m.Content,
			&m.FileID,
			&m.ThreadRootID,
			&m.ReplyCount,
			&m.Pinned,
			&m.PinnedBy,
			&m.PinnedAt,
			&m.IsQuestion,
			&m.AnswerID,
			&m.Edited,
			&m.ReplyToID,
			&m.ReplyToAuthor,
			&m.ReplyToExcerpt,
			&m.CreatedAt,
			&m.UpdatedAt,
			&senderName,
			&senderAvatar,
			&fileName,
			&fileURL,
			&mimeType,
			&fileSize,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}

		if senderName != nil {
			m.Sender = &models.User{
				ID:           m.SenderID,
				DisplayName:  *senderName,
				AvatarFileID: senderAvatar,
			}
		}

		if m.FileID != nil && fileName != nil {
			file := &models.File{ID: *m.FileID, FileName: *fileName}
			if fileURL != nil {
				file.FileURL = *fileURL
			}
			if mimeType != nil {
				file.MimeType = *mimeType
			}
			if fileSize != nil {
				file.FileSize = *fileSize
			}
			m.File = file
		}

		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// UpdateContent edits a message's content and marks it edited
func (r *MessageRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE messages SET content = $1, edited = TRUE, updated_at = NOW() WHERE id = $2`,
		content, id)
	if err != nil {
		return fmt.Errorf("error updating message content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// SetPinned pins or unpins a message
func (r *MessageRepository) SetPinned(ctx context.Context, id int64, pinned bool, pinnedBy *int64) error {
	var result pgconn.CommandTag
	var err error
	if pinned {
		result, err = r.db.Exec(ctx,
			`UPDATE messages SET pinned = TRUE, pinned_by = $1, pinned_at = NOW() WHERE id = $2`,
			pinnedBy, id)
	} else {
		result, err = r.db.Exec(ctx,
			`UPDATE messages SET pinned = FALSE, pinned_by = NULL, pinned_at = NULL WHERE id = $1`,
			id)
	}
	if err != nil {
		return fmt.Errorf("error updating pin state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// MarkQuestion flags a message as a question
func (r *MessageRepository) MarkQuestion(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE messages SET is_question = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking question: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// SetAnswer records the accepted answer of a question message
func (r *MessageRepository) SetAnswer(ctx context.Context, questionID, answerID int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE messages SET answer_id = $1, updated_at = NOW() WHERE id = $2 AND is_question`,
		answerID, questionID)
	if err != nil {
		return fmt.Errorf("error setting answer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// Delete removes a message. Deleting a thread root also removes its replies
// via the self-referencing cascade, and decrements the root's reply count
// when a reply is removed.
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var threadRootID *int64
	err = tx.QueryRow(ctx,
		`SELECT thread_root_id FROM messages WHERE id = $1`, id).Scan(&threadRootID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrMessageNotFound
		}
		return fmt.Errorf("error loading message for delete: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}

	if threadRootID != nil {
		_, err := tx.Exec(ctx,
			`UPDATE messages SET reply_count = GREATEST(reply_count - 1, 0) WHERE id = $1`,
			*threadRootID)
		if err != nil {
			return fmt.Errorf("error decrementing reply count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing delete: %w", err)
	}

	return nil
}
