package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/services"
	"github.com/emre/collabhub/internal/middleware"
)

// EventController handles community calendar operations
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.CreateEventRequest true "Event data"
// @Success 201 {object} dto.EventResponse
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/events [post]
func (c *EventController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.eventService.CreateEvent(ctx.Request.Context(), communityID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// Get godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /events/{eventId} [get]
func (c *EventController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.eventService.GetEvent(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// List godoc
// @Summary List community events
// @Description Retrieve the community calendar within a time range, soonest first
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param from query string false "Events ending after this RFC3339 timestamp"
// @Param until query string false "Events starting before this RFC3339 timestamp"
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.EventListResponse
// @Router /communities/{id}/events [get]
func (c *EventController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.ListEventsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.eventService.ListEvents(ctx.Request.Context(), communityID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Update godoc
// @Summary Edit an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Event data"
// @Success 200 {object} dto.EventResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /events/{eventId} [put]
func (c *EventController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.eventService.UpdateEvent(ctx.Request.Context(), eventID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /events/{eventId} [delete]
func (c *EventController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), eventID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Event deleted"})
}

// RSVP godoc
// @Summary Answer an event invitation
// @Description Record GOING, MAYBE or DECLINED. GOING is rejected when the event is full.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param request body dto.RSVPRequest true "Attendance answer"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse "Event full"
// @Router /events/{eventId}/rsvp [put]
func (c *EventController) RSVP(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.RSVPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.eventService.RSVP(ctx.Request.Context(), eventID, userID, models.RSVPStatus(req.Status)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "RSVP recorded"})
}

// CancelRSVP godoc
// @Summary Withdraw an attendance answer
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /events/{eventId}/rsvp [delete]
func (c *EventController) CancelRSVP(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.eventService.CancelRSVP(ctx.Request.Context(), eventID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "RSVP withdrawn"})
}

// ListRSVPs godoc
// @Summary List event attendance
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} dto.RSVPListResponse
// @Router /events/{eventId}/rsvps [get]
func (c *EventController) ListRSVPs(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	eventID, err := pathID(ctx, "eventId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.eventService.ListRSVPs(ctx.Request.Context(), eventID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}
