package models

import "time"

// RSVPStatus represents a user's attendance answer for an event
type RSVPStatus string

const (
	RSVPStatusGoing    RSVPStatus = "GOING"
	RSVPStatusMaybe    RSVPStatus = "MAYBE"
	RSVPStatusDeclined RSVPStatus = "DECLINED"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusGoing, RSVPStatusMaybe, RSVPStatusDeclined:
		return true
	}
	return false
}

// Event represents a calendar event within a community
type Event struct {
	ID          int64     `json:"id" db:"id"`
	CommunityID int64     `json:"communityId" db:"community_id"`
	CreatorID   int64     `json:"creatorId" db:"creator_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	StartsAt    time.Time `json:"startsAt" db:"starts_at"`
	EndsAt      time.Time `json:"endsAt" db:"ends_at"`
	Capacity    *int      `json:"capacity,omitempty" db:"capacity"` // nil means unlimited
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Creator    *User   `json:"creator,omitempty"`
	GoingCount int     `json:"goingCount"`
	MaybeCount int     `json:"maybeCount"`
	RSVPs      []*RSVP `json:"rsvps,omitempty"`
}

// RSVP represents a user's attendance answer for an event
type RSVP struct {
	ID        int64      `json:"id" db:"id"`
	EventID   int64      `json:"eventId" db:"event_id"`
	UserID    int64      `json:"userId" db:"user_id"`
	Status    RSVPStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`

	// Related entities
	User *User `json:"user,omitempty"`
}
