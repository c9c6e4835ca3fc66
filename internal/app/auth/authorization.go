package auth

import (
	"context"
	"errors"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

// MembershipSource resolves a user's membership in a community
type MembershipSource interface {
	Get(ctx context.Context, communityID, userID int64) (*models.Membership, error)
}

// UserSource resolves users by ID
type UserSource interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorizationService layers the ad hoc permission predicates of the
// application on top of the community role hierarchy. Platform admins pass
// every community-scoped check.
type AuthorizationService struct {
	memberships MembershipSource
	users       UserSource
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(memberships MembershipSource, users UserSource) *AuthorizationService {
	return &AuthorizationService{
		memberships: memberships,
		users:       users,
	}
}

// RoleIn returns the user's active role in a community. Pending memberships
// do not confer a role.
func (s *AuthorizationService) RoleIn(ctx context.Context, communityID, userID int64) (models.CommunityRole, error) {
	membership, err := s.memberships.Get(ctx, communityID, userID)
	if err != nil {
		return "", err
	}
	if membership.Status != models.MembershipStatusActive {
		return "", apperrors.ErrNotAMember
	}
	return membership.Role, nil
}

// IsPlatformAdmin reports whether the user holds the global admin role
func (s *AuthorizationService) IsPlatformAdmin(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin(), nil
}

// HasRole reports whether the user holds at least the given role in the
// community, or is a platform admin.
func (s *AuthorizationService) HasRole(ctx context.Context, communityID, userID int64, min models.CommunityRole) (bool, error) {
	if admin, err := s.IsPlatformAdmin(ctx, userID); err != nil {
		return false, err
	} else if admin {
		return true, nil
	}

	role, err := s.RoleIn(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAMember) {
			return false, nil
		}
		return false, err
	}
	return role.AtLeast(min), nil
}

// CanModerate reports whether the user may perform moderator actions in the
// community (pinning, deleting others' content, approving joins).
func (s *AuthorizationService) CanModerate(ctx context.Context, communityID, userID int64) (bool, error) {
	return s.HasRole(ctx, communityID, userID, models.CommunityRoleModerator)
}

// CanDeleteMessage reports whether the user may delete a message: the sender
// may always delete their own, moderators and up may delete anyone's.
func (s *AuthorizationService) CanDeleteMessage(ctx context.Context, message *models.Message, userID int64) (bool, error) {
	if message.SenderID == userID {
		return true, nil
	}
	return s.CanModerate(ctx, message.CommunityID, userID)
}

// CanEditMessage reports whether the user may edit a message. Editing is
// restricted to the sender; moderators delete, they do not rewrite.
func (s *AuthorizationService) CanEditMessage(message *models.Message, userID int64) bool {
	return message.SenderID == userID
}

// CanPinMessage reports whether the user may pin or unpin messages
func (s *AuthorizationService) CanPinMessage(ctx context.Context, communityID, userID int64) (bool, error) {
	return s.CanModerate(ctx, communityID, userID)
}

// CanAcceptAnswer reports whether the user may mark a thread reply as the
// accepted answer: the question's author or a moderator.
func (s *AuthorizationService) CanAcceptAnswer(ctx context.Context, question *models.Message, userID int64) (bool, error) {
	if question.SenderID == userID {
		return true, nil
	}
	return s.CanModerate(ctx, question.CommunityID, userID)
}

// CanManageResource reports whether the user may update or delete a shared
// resource: the uploader or a moderator.
func (s *AuthorizationService) CanManageResource(ctx context.Context, resource *models.Resource, userID int64) (bool, error) {
	if resource.UploaderID == userID {
		return true, nil
	}
	return s.CanModerate(ctx, resource.CommunityID, userID)
}

// CanManageEvent reports whether the user may update or delete an event:
// the creator or a moderator.
func (s *AuthorizationService) CanManageEvent(ctx context.Context, event *models.Event, userID int64) (bool, error) {
	if event.CreatorID == userID {
		return true, nil
	}
	return s.CanModerate(ctx, event.CommunityID, userID)
}

// CanManageCommunity reports whether the user may change community settings
// or delete the community: the owner or a platform admin.
func (s *AuthorizationService) CanManageCommunity(ctx context.Context, community *models.Community, userID int64) (bool, error) {
	if community.OwnerID == userID {
		return true, nil
	}
	return s.IsPlatformAdmin(ctx, userID)
}
