package dto

import (
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

// CreateEventRequest represents data for creating a new event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description" binding:"max=4000"`
	Location    string    `json:"location" binding:"max=300"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required,gtfield=StartsAt"`
	Capacity    *int      `json:"capacity,omitempty" binding:"omitempty,min=1"`
}

// UpdateEventRequest represents an event edit
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=200"`
	Description string    `json:"description" binding:"max=4000"`
	Location    string    `json:"location" binding:"max=300"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required,gtfield=StartsAt"`
	Capacity    *int      `json:"capacity,omitempty" binding:"omitempty,min=1"`
}

// ListEventsRequest represents filter parameters for the calendar view
type ListEventsRequest struct {
	From  *time.Time `form:"from"`
	Until *time.Time `form:"until"`
	Limit int        `form:"limit,default=50" binding:"min=1,max=200"`
}

// RSVPRequest represents an attendance answer
type RSVPRequest struct {
	Status string `json:"status" binding:"required,oneof=GOING MAYBE DECLINED"`
}

// EventResponse represents a calendar event
type EventResponse struct {
	ID          int64     `json:"id"`
	CommunityID int64     `json:"communityId"`
	CreatorID   int64     `json:"creatorId"`
	CreatorName string    `json:"creatorName,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Capacity    *int      `json:"capacity,omitempty"`
	GoingCount  int       `json:"goingCount"`
	MaybeCount  int       `json:"maybeCount"`
	MyStatus    string    `json:"myStatus,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EventListResponse represents a list of events
type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

// RSVPResponse represents a single attendee's answer
type RSVPResponse struct {
	UserID      int64     `json:"userId"`
	DisplayName string    `json:"displayName,omitempty"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RSVPListResponse represents an event's attendee answers
type RSVPListResponse struct {
	RSVPs []RSVPResponse `json:"rsvps"`
}

// ToEventResponse transforms a models.Event to EventResponse
func ToEventResponse(event *models.Event) EventResponse {
	response := EventResponse{
		ID:          event.ID,
		CommunityID: event.CommunityID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Capacity:    event.Capacity,
		GoingCount:  event.GoingCount,
		MaybeCount:  event.MaybeCount,
		CreatedAt:   event.CreatedAt,
	}
	if event.Creator != nil {
		response.CreatorName = event.Creator.DisplayName
	}
	return response
}

// ToEventListResponse transforms a slice of events to EventListResponse
func ToEventListResponse(events []*models.Event) EventListResponse {
	response := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, event := range events {
		response.Events = append(response.Events, ToEventResponse(event))
	}
	return response
}

// ToRSVPResponse transforms a models.RSVP (with its User loaded) to RSVPResponse
func ToRSVPResponse(rsvp *models.RSVP) RSVPResponse {
	response := RSVPResponse{
		UserID:    rsvp.UserID,
		Status:    string(rsvp.Status),
		UpdatedAt: rsvp.UpdatedAt,
	}
	if rsvp.User != nil {
		response.DisplayName = rsvp.User.DisplayName
	}
	return response
}
