package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emre/collabhub/internal/app/auth"
	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// EventService defines the interface for community calendar operations
type EventService interface {
	CreateEvent(ctx context.Context, communityID, userID int64, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, id, userID int64) (*dto.EventResponse, error)
	ListEvents(ctx context.Context, communityID, userID int64, req *dto.ListEventsRequest) (*dto.EventListResponse, error)
	UpdateEvent(ctx context.Context, id, userID int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, id, userID int64) error
	RSVP(ctx context.Context, eventID, userID int64, status models.RSVPStatus) error
	CancelRSVP(ctx context.Context, eventID, userID int64) error
	ListRSVPs(ctx context.Context, eventID, userID int64) (*dto.RSVPListResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo      *repositories.EventRepository
	membershipRepo *repositories.MembershipRepository
	authzService   *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo *repositories.EventRepository,
	membershipRepo *repositories.MembershipRepository,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo:      eventRepo,
		membershipRepo: membershipRepo,
		authzService:   authzService,
		logger:         logger,
	}
}

func (s *eventServiceImpl) requireMember(ctx context.Context, communityID, userID int64) error {
	member, err := s.membershipRepo.IsActiveMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.ErrNotAMember
	}
	return nil
}

// CreateEvent creates a new event in the community calendar
func (s *eventServiceImpl) CreateEvent(ctx context.Context, communityID, userID int64, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.ErrEventInThePast
	}

	event := &models.Event{
		CommunityID: communityID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}

	if _, err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("eventID", event.ID).
		Int64("communityID", communityID).
		Time("startsAt", event.StartsAt).
		Msg("Event created")

	return s.GetEvent(ctx, event.ID, userID)
}

// GetEvent retrieves an event, member only
func (s *eventServiceImpl) GetEvent(ctx context.Context, id, userID int64) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, event.CommunityID, userID); err != nil {
		return nil, err
	}

	response := dto.ToEventResponse(event)
	return &response, nil
}

// ListEvents lists a community's events within a time range
func (s *eventServiceImpl) ListEvents(ctx context.Context, communityID, userID int64, req *dto.ListEventsRequest) (*dto.EventListResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.List(ctx, communityID, repositories.EventFilter{
		From:  req.From,
		Until: req.Until,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	response := dto.ToEventListResponse(events)
	return &response, nil
}

// UpdateEvent edits an event, creator or moderator only
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, id, userID int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authzService.CanManageEvent(ctx, event, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("only the creator or a moderator can edit this event")
	}

	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.ErrEventInThePast
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Capacity = req.Capacity

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	return s.GetEvent(ctx, id, userID)
}

// DeleteEvent removes an event, creator or moderator only
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, id, userID int64) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanManageEvent(ctx, event, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the creator or a moderator can delete this event")
	}

	return s.eventRepo.Delete(ctx, id)
}

// RSVP records or updates the user's attendance answer. GOING answers are
// rejected once a capacity-limited event is full.
func (s *eventServiceImpl) RSVP(ctx context.Context, eventID, userID int64, status models.RSVPStatus) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	if err := s.requireMember(ctx, event.CommunityID, userID); err != nil {
		return err
	}

	return s.eventRepo.UpsertRSVP(ctx, &models.RSVP{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}, event.Capacity)
}

// CancelRSVP removes the user's attendance answer
func (s *eventServiceImpl) CancelRSVP(ctx context.Context, eventID, userID int64) error {
	return s.eventRepo.DeleteRSVP(ctx, eventID, userID)
}

// ListRSVPs lists the event's attendance answers, member only
func (s *eventServiceImpl) ListRSVPs(ctx context.Context, eventID, userID int64) (*dto.RSVPListResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, event.CommunityID, userID); err != nil {
		return nil, err
	}

	rsvps, err := s.eventRepo.ListRSVPs(ctx, eventID)
	if err != nil {
		return nil, err
	}

	response := &dto.RSVPListResponse{RSVPs: make([]dto.RSVPResponse, 0, len(rsvps))}
	for _, rsvp := range rsvps {
		response.RSVPs = append(response.RSVPs, dto.ToRSVPResponse(rsvp))
	}
	return response, nil
}
