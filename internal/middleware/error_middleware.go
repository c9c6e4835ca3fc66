package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// HandleAPIError maps application errors onto HTTP responses. Controllers
// funnel every service error through here so status codes stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		if message == "" {
			message = fallback
		}
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
	}

	switch {
	// Not found
	case errors.Is(err, apperrors.ErrUserNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrCommunityNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Community not found")
	case errors.Is(err, apperrors.ErrMessageNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Message not found")
	case errors.Is(err, apperrors.ErrSharedResourceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Shared resource not found")
	case errors.Is(err, apperrors.ErrEventNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Event not found")
	case errors.Is(err, apperrors.ErrRSVPNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "RSVP not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respond(http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")

	// Authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled")

	// Authorization and membership
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respond(http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrNotAMember):
		respond(http.StatusForbidden, dto.ErrorCodeNotAMember, "You are not a member of this community")
	case errors.Is(err, apperrors.ErrMembershipPending):
		respond(http.StatusForbidden, dto.ErrorCodeMembershipPending, "Your membership request is pending approval")
	case errors.Is(err, apperrors.ErrOwnerCannotLeave):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Community owner cannot leave without transferring ownership")

	// Conflicts
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrCommunityAlreadyExists):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Community with this name or slug already exists")
	case errors.Is(err, apperrors.ErrAlreadyMember):
		respond(http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Already a member of this community")
	case errors.Is(err, apperrors.ErrEventFull):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Event has reached capacity")
	case errors.Is(err, apperrors.ErrConflict):
		respond(http.StatusConflict, dto.ErrorCodeConflict, "Conflict")

	// Bad requests
	case errors.Is(err, apperrors.ErrNotAQuestion):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Message is not marked as a question")
	case errors.Is(err, apperrors.ErrNotInThread):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Answer must be a reply in the question's thread")
	case errors.Is(err, apperrors.ErrThreadingNested):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Thread replies cannot start their own thread")
	case errors.Is(err, apperrors.ErrEventInThePast):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Event cannot end before it starts")
	case errors.Is(err, apperrors.ErrResourceHasNoFile):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Resource has no downloadable file")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		respond(http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request")

	default:
		respond(http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleValidationError converts a request binding error into a 400 response
func HandleValidationError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	errorDetail = errorDetail.WithDetails(err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
