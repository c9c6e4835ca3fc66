package auth

import (
	"context"
	"testing"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

type fakeMemberships struct {
	memberships map[int64]*models.Membership
}

func (f *fakeMemberships) Get(_ context.Context, _, userID int64) (*models.Membership, error) {
	m, ok := f.memberships[userID]
	if !ok {
		return nil, apperrors.ErrNotAMember
	}
	return m, nil
}

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func newTestService() *AuthorizationService {
	memberships := &fakeMemberships{memberships: map[int64]*models.Membership{
		1: {UserID: 1, Role: models.CommunityRoleOwner, Status: models.MembershipStatusActive},
		2: {UserID: 2, Role: models.CommunityRoleModerator, Status: models.MembershipStatusActive},
		3: {UserID: 3, Role: models.CommunityRoleMember, Status: models.MembershipStatusActive},
		4: {UserID: 4, Role: models.CommunityRoleMember, Status: models.MembershipStatusPending},
	}}
	users := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, GlobalRole: models.GlobalRoleUser},
		2: {ID: 2, GlobalRole: models.GlobalRoleUser},
		3: {ID: 3, GlobalRole: models.GlobalRoleUser},
		4: {ID: 4, GlobalRole: models.GlobalRoleUser},
		9: {ID: 9, GlobalRole: models.GlobalRoleAdmin},
	}}
	return NewAuthorizationService(memberships, users)
}

func TestHasRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		min    models.CommunityRole
		want   bool
	}{
		{"owner meets owner", 1, models.CommunityRoleOwner, true},
		{"moderator meets moderator", 2, models.CommunityRoleModerator, true},
		{"moderator does not meet owner", 2, models.CommunityRoleOwner, false},
		{"member does not meet moderator", 3, models.CommunityRoleModerator, false},
		{"pending member has no role", 4, models.CommunityRoleMember, false},
		{"non-member has no role", 7, models.CommunityRoleMember, false},
		{"platform admin bypasses hierarchy", 9, models.CommunityRoleOwner, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasRole(ctx, 10, tt.userID, tt.min)
			if err != nil {
				t.Fatalf("HasRole returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasRole(user=%d, min=%s) = %v, want %v", tt.userID, tt.min, got, tt.want)
			}
		})
	}
}

func TestCanDeleteMessage(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	message := &models.Message{ID: 100, CommunityID: 10, SenderID: 3}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"sender deletes own message", 3, true},
		{"moderator deletes any message", 2, true},
		{"owner deletes any message", 1, true},
		{"other member cannot delete", 7, false},
		{"platform admin deletes any message", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanDeleteMessage(ctx, message, tt.userID)
			if err != nil {
				t.Fatalf("CanDeleteMessage returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanDeleteMessage(user=%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestCanEditMessage(t *testing.T) {
	svc := newTestService()
	message := &models.Message{ID: 100, CommunityID: 10, SenderID: 3}

	if !svc.CanEditMessage(message, 3) {
		t.Error("sender should be able to edit own message")
	}
	if svc.CanEditMessage(message, 2) {
		t.Error("moderator should not be able to edit another user's message")
	}
}

func TestCanAcceptAnswer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	question := &models.Message{ID: 100, CommunityID: 10, SenderID: 3, IsQuestion: true}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"question author accepts", 3, true},
		{"moderator accepts", 2, true},
		{"other member cannot accept", 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanAcceptAnswer(ctx, question, tt.userID)
			if err != nil {
				t.Fatalf("CanAcceptAnswer returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanAcceptAnswer(user=%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestCanManageResource(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	resource := &models.Resource{ID: 5, CommunityID: 10, UploaderID: 3}

	if ok, _ := svc.CanManageResource(ctx, resource, 3); !ok {
		t.Error("uploader should manage own resource")
	}
	if ok, _ := svc.CanManageResource(ctx, resource, 2); !ok {
		t.Error("moderator should manage any resource")
	}
	if ok, _ := svc.CanManageResource(ctx, resource, 7); ok {
		t.Error("non-member should not manage resources")
	}
}

func TestCanManageCommunity(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	community := &models.Community{ID: 10, OwnerID: 1}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"owner manages community", 1, true},
		{"moderator cannot manage community", 2, false},
		{"platform admin manages community", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanManageCommunity(ctx, community, tt.userID)
			if err != nil {
				t.Fatalf("CanManageCommunity returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanManageCommunity(user=%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}
