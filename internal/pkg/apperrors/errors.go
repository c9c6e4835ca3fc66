package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Community errors
var (
	ErrCommunityNotFound      = errors.New("community not found")
	ErrCommunityAlreadyExists = errors.New("community with this name or slug already exists")
	ErrNotAMember             = errors.New("user is not a member of this community")
	ErrAlreadyMember          = errors.New("user is already a member of this community")
	ErrMembershipPending      = errors.New("membership request is pending approval")
	ErrOwnerCannotLeave       = errors.New("community owner cannot leave without transferring ownership")
)

// Chat errors
var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotAQuestion     = errors.New("message is not marked as a question")
	ErrNotInThread      = errors.New("answer must be a reply in the question's thread")
	ErrThreadingNested  = errors.New("thread replies cannot start their own thread")
)

// Resource errors
var (
	ErrSharedResourceNotFound = errors.New("shared resource not found")
	ErrResourceHasNoFile      = errors.New("resource has no downloadable file")
)

// Event errors
var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventFull      = errors.New("event has reached capacity")
	ErrEventInThePast = errors.New("event cannot end before it starts")
	ErrRSVPNotFound   = errors.New("rsvp not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
