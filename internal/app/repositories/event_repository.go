package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// EventRepository handles database operations for events and RSVPs
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (int64, error) {
	query := `
		INSERT INTO events (community_id, creator_id, title, description, location, starts_at, ends_at, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		event.CommunityID,
		event.CreatorID,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return 0, fmt.Errorf("error creating event: %w", err)
	}

	return event.ID, nil
}

const eventSelect = `
	SELECT e.id, e.community_id, e.creator_id, e.title, e.description, e.location,
	       e.starts_at, e.ends_at, e.capacity, e.created_at, e.updated_at,
	       u.display_name,
	       (SELECT COUNT(*) FROM rsvps WHERE event_id = e.id AND status = 'GOING') AS going_count,
	       (SELECT COUNT(*) FROM rsvps WHERE event_id = e.id AND status = 'MAYBE') AS maybe_count
	FROM events e
	LEFT JOIN users u ON e.creator_id = u.id
`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	var creatorName *string

	err := row.Scan(
		&e.ID,
		&e.CommunityID,
		&e.CreatorID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.Capacity,
		&e.CreatedAt,
		&e.UpdatedAt,
		&creatorName,
		&e.GoingCount,
		&e.MaybeCount,
	)
	if err != nil {
		return nil, err
	}

	if creatorName != nil {
		e.Creator = &models.User{ID: e.CreatorID, DisplayName: *creatorName}
	}

	return &e, nil
}

// GetByID retrieves an event with creator and attendance counts
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("error retrieving event: %w", err)
	}
	return event, nil
}

// EventFilter narrows an event listing
type EventFilter struct {
	From  *time.Time
	Until *time.Time
	Limit int
}

// List retrieves a community's events ordered by start time
func (r *EventRepository) List(ctx context.Context, communityID int64, filter EventFilter) ([]*models.Event, error) {
	queryBuilder := squirrel.Select(
		"e.id", "e.community_id", "e.creator_id", "e.title", "e.description", "e.location",
		"e.starts_at", "e.ends_at", "e.capacity", "e.created_at", "e.updated_at",
		"u.display_name",
		"(SELECT COUNT(*) FROM rsvps WHERE event_id = e.id AND status = 'GOING') AS going_count",
		"(SELECT COUNT(*) FROM rsvps WHERE event_id = e.id AND status = 'MAYBE') AS maybe_count",
	).
		From("events e").
		LeftJoin("users u ON e.creator_id = u.id").
		Where("e.community_id = ?", communityID).
		OrderBy("e.starts_at ASC").
		Limit(uint64(filter.Limit)).
		PlaceholderFormat(squirrel.Dollar)

	if filter.From != nil {
		queryBuilder = queryBuilder.Where("e.ends_at >= ?", *filter.From)
	}

	if filter.Until != nil {
		queryBuilder = queryBuilder.Where("e.starts_at <= ?", *filter.Until)
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

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// Update modifies an event's editable fields
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, starts_at = $4,
		    ends_at = $5, capacity = $6, updated_at = NOW()
		WHERE id = $7
	`

	result, err := r.db.Exec(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// Delete removes an event and its RSVPs (cascade)
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

// UpsertRSVP creates or updates a user's RSVP for an event. When the event
// has a capacity, the GOING upsert is guarded against exceeding it.
func (r *EventRepository) UpsertRSVP(ctx context.Context, rsvp *models.RSVP, capacity *int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if capacity != nil && rsvp.Status == models.RSVPStatusGoing {
		// Lock the event row so concurrent RSVPs serialize on the capacity check
		var locked int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM events WHERE id = $1 FOR UPDATE`, rsvp.EventID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrEventNotFound
			}
			return fmt.Errorf("error locking event: %w", err)
		}

		var going int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM rsvps
			 WHERE event_id = $1 AND status = 'GOING' AND user_id <> $2`,
			rsvp.EventID, rsvp.UserID).Scan(&going)
		if err != nil {
			return fmt.Errorf("error counting attendees: %w", err)
		}
		if going >= *capacity {
			return apperrors.ErrEventFull
		}
	}

	query := `
		INSERT INTO rsvps (event_id, user_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		rsvp.EventID,
		rsvp.UserID,
		rsvp.Status,
	).Scan(&rsvp.ID, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting rsvp: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing rsvp: %w", err)
	}

	return nil
}

// DeleteRSVP clears a user's RSVP
func (r *EventRepository) DeleteRSVP(ctx context.Context, eventID, userID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM rsvps WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("error deleting rsvp: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrRSVPNotFound
	}
	return nil
}

// ListRSVPs retrieves an event's RSVPs with user details
func (r *EventRepository) ListRSVPs(ctx context.Context, eventID int64) ([]*models.RSVP, error) {
	query := `
		SELECT r.id, r.event_id, r.user_id, r.status, r.created_at, r.updated_at,
		       u.display_name, u.avatar_file_id
		FROM rsvps r
		JOIN users u ON r.user_id = u.id
		WHERE r.event_id = $1
		ORDER BY r.created_at ASC
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []*models.RSVP
	for rows.Next() {
		var rsvp models.RSVP
		var u models.User
		err := rows.Scan(
			&rsvp.ID,
			&rsvp.EventID,
			&rsvp.UserID,
			&rsvp.Status,
			&rsvp.CreatedAt,
			&rsvp.UpdatedAt,
			&u.DisplayName,
			&u.AvatarFileID,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning rsvp row: %w", err)
		}
		u.ID = rsvp.UserID
		rsvp.User = &u
		rsvps = append(rsvps, &rsvp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rsvp rows: %w", err)
	}

	return rsvps, nil
}
