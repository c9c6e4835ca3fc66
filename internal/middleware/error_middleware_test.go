package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

func TestHandleAPIErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"community not found", apperrors.ErrCommunityNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"message not found", apperrors.ErrMessageNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"token expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"not a member", apperrors.ErrNotAMember, http.StatusForbidden, dto.ErrorCodeNotAMember},
		{"membership pending", apperrors.ErrMembershipPending, http.StatusForbidden, dto.ErrorCodeMembershipPending},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"already member", apperrors.ErrAlreadyMember, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"event full", apperrors.ErrEventFull, http.StatusConflict, dto.ErrorCodeConflict},
		{"owner cannot leave", apperrors.ErrOwnerCannotLeave, http.StatusConflict, dto.ErrorCodeConflict},
		{"nested thread", apperrors.ErrThreadingNested, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"answer outside thread", apperrors.ErrNotInThread, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"unknown error", assertAnError, http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}

			var body dto.ErrorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body is not valid JSON: %v", err)
			}
			if body.Success {
				t.Error("error responses must have success=false")
			}
			if body.Error == nil {
				t.Fatal("error detail missing from response")
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", body.Error.Code, tt.wantCode)
			}
		})
	}
}

var assertAnError = &apperrors.CustomError{Message: "boom"}

func TestHandleAPIErrorKeepsCustomMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrCommunityNotFound, "community gophers does not exist"))

	var body dto.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body.Error.Message != "community gophers does not exist" {
		t.Errorf("message = %q, want the wrapped custom message", body.Error.Message)
	}
}
