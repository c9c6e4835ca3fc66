package services

import (
	"context"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/emre/collabhub/internal/app/auth"
	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
	"github.com/emre/collabhub/internal/pkg/filestorage"
)

// CommunityService defines the interface for community and membership operations
type CommunityService interface {
	CreateCommunity(ctx context.Context, userID int64, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error)
	GetCommunity(ctx context.Context, id int64) (*dto.CommunityResponse, error)
	GetCommunityBySlug(ctx context.Context, slug string) (*dto.CommunityResponse, error)
	ListCommunities(ctx context.Context, req *dto.ListCommunitiesRequest) (*dto.CommunityListResponse, error)
	UpdateCommunity(ctx context.Context, id, userID int64, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error)
	UpdateAvatar(ctx context.Context, id, userID int64, fileHeader *multipart.FileHeader) (*dto.CommunityResponse, error)
	DeleteCommunity(ctx context.Context, id, userID int64) error

	Join(ctx context.Context, communityID, userID int64) (*dto.JoinResponse, error)
	Leave(ctx context.Context, communityID, userID int64) error
	ListMembers(ctx context.Context, communityID, userID int64, status models.MembershipStatus) (*dto.MemberListResponse, error)
	ApproveMember(ctx context.Context, communityID, actorID, memberID int64) error
	RejectMember(ctx context.Context, communityID, actorID, memberID int64) error
	UpdateMemberRole(ctx context.Context, communityID, actorID, memberID int64, role models.CommunityRole) error
	TransferOwnership(ctx context.Context, communityID, actorID, newOwnerID int64) error
	RemoveMember(ctx context.Context, communityID, actorID, memberID int64) error
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communityRepo  *repositories.CommunityRepository
	membershipRepo *repositories.MembershipRepository
	fileRepo       *repositories.FileRepository
	fileStorage    *filestorage.LocalStorage
	authzService   *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	communityRepo *repositories.CommunityRepository,
	membershipRepo *repositories.MembershipRepository,
	fileRepo *repositories.FileRepository,
	fileStorage *filestorage.LocalStorage,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		fileRepo:       fileRepo,
		fileStorage:    fileStorage,
		authzService:   authzService,
		logger:         logger,
	}
}

// CreateCommunity creates a community and makes the creator its owner
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, userID int64, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error) {
	joinPolicy := models.JoinPolicyOpen
	if req.JoinPolicy != "" {
		joinPolicy = models.JoinPolicy(req.JoinPolicy)
	}

	community := &models.Community{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		OwnerID:     userID,
		JoinPolicy:  joinPolicy,
	}

	if _, err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, err
	}

	if _, err := s.membershipRepo.Create(ctx, &models.Membership{
		CommunityID: community.ID,
		UserID:      userID,
		Role:        models.CommunityRoleOwner,
		Status:      models.MembershipStatusActive,
	}); err != nil {
		s.logger.Error().Err(err).Int64("communityID", community.ID).Msg("Failed to create owner membership")
		return nil, err
	}

	s.logger.Info().Int64("communityID", community.ID).Int64("ownerID", userID).Msg("Community created")

	community.MemberCount = 1
	response := dto.ToCommunityResponse(community)
	return &response, nil
}

// GetCommunity retrieves a community by ID
func (s *communityServiceImpl) GetCommunity(ctx context.Context, id int64) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.loadAvatar(ctx, community)
	response := dto.ToCommunityResponse(community)
	return &response, nil
}

// GetCommunityBySlug retrieves a community by its URL slug
func (s *communityServiceImpl) GetCommunityBySlug(ctx context.Context, slug string) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.loadAvatar(ctx, community)
	response := dto.ToCommunityResponse(community)
	return &response, nil
}

func (s *communityServiceImpl) loadAvatar(ctx context.Context, community *models.Community) {
	if community.AvatarFileID == nil {
		return
	}
	if avatar, err := s.fileRepo.GetByID(ctx, *community.AvatarFileID); err == nil {
		community.Avatar = avatar
	}
}

// ListCommunities lists communities matching the search filter
func (s *communityServiceImpl) ListCommunities(ctx context.Context, req *dto.ListCommunitiesRequest) (*dto.CommunityListResponse, error) {
	communities, err := s.communityRepo.List(ctx, req.Search, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}

	response := &dto.CommunityListResponse{Communities: make([]dto.CommunityResponse, 0, len(communities))}
	for _, community := range communities {
		response.Communities = append(response.Communities, dto.ToCommunityResponse(community))
	}
	return response, nil
}

// UpdateCommunity updates community settings, owner only
func (s *communityServiceImpl) UpdateCommunity(ctx context.Context, id, userID int64, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authzService.CanManageCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("only the community owner can change settings")
	}

	community.Name = req.Name
	community.Description = req.Description
	community.JoinPolicy = models.JoinPolicy(req.JoinPolicy)

	if err := s.communityRepo.Update(ctx, community); err != nil {
		return nil, err
	}

	return s.GetCommunity(ctx, id)
}

// UpdateAvatar stores a new community avatar, owner only
func (s *communityServiceImpl) UpdateAvatar(ctx context.Context, id, userID int64, fileHeader *multipart.FileHeader) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authzService.CanManageCommunity(ctx, community, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("only the community owner can change the avatar")
	}

	fileURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "communities")
	if err != nil {
		return nil, err
	}

	fileID, err := s.fileRepo.Create(ctx, &models.File{
		FileName:   fileHeader.Filename,
		FilePath:   s.fileStorage.RelativePath(fileURL),
		FileURL:    fileURL,
		FileSize:   fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Scope:      models.FileScopeCommunity,
		ScopeID:    id,
		UploadedBy: userID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.communityRepo.UpdateAvatar(ctx, id, &fileID); err != nil {
		return nil, err
	}

	if community.AvatarFileID != nil {
		if old, err := s.fileRepo.GetByID(ctx, *community.AvatarFileID); err == nil {
			if err := s.fileStorage.DeleteFile(old.FilePath); err != nil {
				s.logger.Warn().Err(err).Str("path", old.FilePath).Msg("Failed to delete old community avatar")
			}
			_ = s.fileRepo.Delete(ctx, old.ID)
		}
	}

	return s.GetCommunity(ctx, id)
}

// DeleteCommunity removes a community and everything in it, owner only
func (s *communityServiceImpl) DeleteCommunity(ctx context.Context, id, userID int64) error {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanManageCommunity(ctx, community, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the community owner can delete the community")
	}

	if err := s.communityRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Int64("communityID", id).Int64("userID", userID).Msg("Community deleted")
	return nil
}

// Join adds the user to a community. OPEN communities admit immediately,
// APPROVAL communities create a pending request a moderator must approve.
func (s *communityServiceImpl) Join(ctx context.Context, communityID, userID int64) (*dto.JoinResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	status := models.MembershipStatusActive
	if community.JoinPolicy == models.JoinPolicyApproval {
		status = models.MembershipStatusPending
	}

	if _, err := s.membershipRepo.Create(ctx, &models.Membership{
		CommunityID: communityID,
		UserID:      userID,
		Role:        models.CommunityRoleMember,
		Status:      status,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("userID", userID).
		Str("status", string(status)).
		Msg("User joined community")

	return &dto.JoinResponse{Status: string(status)}, nil
}

// Leave removes the user's membership. The owner must transfer ownership
// before leaving.
func (s *communityServiceImpl) Leave(ctx context.Context, communityID, userID int64) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	if community.OwnerID == userID {
		return apperrors.ErrOwnerCannotLeave
	}

	return s.membershipRepo.Delete(ctx, communityID, userID)
}

// ListMembers lists the community's members. The pending list is restricted
// to moderators.
func (s *communityServiceImpl) ListMembers(ctx context.Context, communityID, userID int64, status models.MembershipStatus) (*dto.MemberListResponse, error) {
	if status == models.MembershipStatusPending {
		allowed, err := s.authzService.CanModerate(ctx, communityID, userID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperrors.NewForbiddenError("only moderators can view pending requests")
		}
	} else {
		if err := s.requireActiveMember(ctx, communityID, userID); err != nil {
			return nil, err
		}
	}

	memberships, err := s.membershipRepo.ListByCommunity(ctx, communityID, status)
	if err != nil {
		return nil, err
	}

	response := &dto.MemberListResponse{Members: make([]dto.MemberResponse, 0, len(memberships))}
	for _, membership := range memberships {
		response.Members = append(response.Members, dto.ToMemberResponse(membership))
	}
	return response, nil
}

// ApproveMember activates a pending membership, moderator only
func (s *communityServiceImpl) ApproveMember(ctx context.Context, communityID, actorID, memberID int64) error {
	allowed, err := s.authzService.CanModerate(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only moderators can approve join requests")
	}

	membership, err := s.membershipRepo.Get(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipStatusPending {
		return apperrors.NewConflictError("membership is not pending")
	}

	return s.membershipRepo.UpdateStatus(ctx, communityID, memberID, models.MembershipStatusActive)
}

// RejectMember removes a pending join request, moderator only
func (s *communityServiceImpl) RejectMember(ctx context.Context, communityID, actorID, memberID int64) error {
	allowed, err := s.authzService.CanModerate(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only moderators can reject join requests")
	}

	membership, err := s.membershipRepo.Get(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	if membership.Status != models.MembershipStatusPending {
		return apperrors.NewConflictError("membership is not pending")
	}

	return s.membershipRepo.Delete(ctx, communityID, memberID)
}

// UpdateMemberRole promotes or demotes a member, owner only. The owner role
// itself is never assigned here, ownership moves via transfer.
func (s *communityServiceImpl) UpdateMemberRole(ctx context.Context, communityID, actorID, memberID int64, role models.CommunityRole) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanManageCommunity(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the community owner can change member roles")
	}

	if role == models.CommunityRoleOwner {
		return apperrors.NewBadRequestError("ownership cannot be assigned through role updates")
	}
	if memberID == community.OwnerID {
		return apperrors.NewBadRequestError("the owner's role cannot be changed")
	}

	if _, err := s.membershipRepo.Get(ctx, communityID, memberID); err != nil {
		return err
	}

	return s.membershipRepo.UpdateRole(ctx, communityID, memberID, role)
}

// TransferOwnership hands the community to another active member. The old
// owner stays on as a moderator.
func (s *communityServiceImpl) TransferOwnership(ctx context.Context, communityID, actorID, newOwnerID int64) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanManageCommunity(ctx, community, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the community owner can transfer ownership")
	}
	if newOwnerID == community.OwnerID {
		return apperrors.NewBadRequestError("the user already owns this community")
	}

	target, err := s.membershipRepo.Get(ctx, communityID, newOwnerID)
	if err != nil {
		return err
	}
	if target.Status != models.MembershipStatusActive {
		return apperrors.ErrMembershipPending
	}

	if err := s.communityRepo.UpdateOwner(ctx, communityID, newOwnerID); err != nil {
		return err
	}
	if err := s.membershipRepo.UpdateRole(ctx, communityID, newOwnerID, models.CommunityRoleOwner); err != nil {
		return err
	}
	if err := s.membershipRepo.UpdateRole(ctx, communityID, community.OwnerID, models.CommunityRoleModerator); err != nil {
		return err
	}

	s.logger.Info().
		Int64("communityID", communityID).
		Int64("from", community.OwnerID).
		Int64("to", newOwnerID).
		Msg("Community ownership transferred")
	return nil
}

// RemoveMember kicks a member out of the community, moderator only.
// Moderators cannot remove each other or the owner.
func (s *communityServiceImpl) RemoveMember(ctx context.Context, communityID, actorID, memberID int64) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanModerate(ctx, communityID, actorID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only moderators can remove members")
	}

	if memberID == community.OwnerID {
		return apperrors.NewForbiddenError("the community owner cannot be removed")
	}

	target, err := s.membershipRepo.Get(ctx, communityID, memberID)
	if err != nil {
		return err
	}
	if target.Role.AtLeast(models.CommunityRoleModerator) {
		allowed, err := s.authzService.CanManageCommunity(ctx, community, actorID)
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.NewForbiddenError("only the community owner can remove moderators")
		}
	}

	return s.membershipRepo.Delete(ctx, communityID, memberID)
}

func (s *communityServiceImpl) requireActiveMember(ctx context.Context, communityID, userID int64) error {
	membership, err := s.membershipRepo.Get(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if membership.Status == models.MembershipStatusPending {
		return apperrors.ErrMembershipPending
	}
	return nil
}
