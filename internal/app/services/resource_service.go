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

// ResourceService defines the interface for shared resource operations
type ResourceService interface {
	CreateResource(ctx context.Context, communityID, userID int64, req *dto.CreateResourceRequest, fileHeader *multipart.FileHeader) (*dto.ResourceResponse, error)
	GetResource(ctx context.Context, id, userID int64) (*dto.ResourceResponse, error)
	ListResources(ctx context.Context, communityID, userID int64, req *dto.ListResourcesRequest) (*dto.ResourceListResponse, error)
	UpdateResource(ctx context.Context, id, userID int64, req *dto.UpdateResourceRequest) (*dto.ResourceResponse, error)
	DeleteResource(ctx context.Context, id, userID int64) error
	Download(ctx context.Context, id, userID int64) (*models.File, error)
	Like(ctx context.Context, id, userID int64) (*dto.LikeResponse, error)
	Unlike(ctx context.Context, id, userID int64) (*dto.LikeResponse, error)
}

// resourceServiceImpl implements ResourceService
type resourceServiceImpl struct {
	resourceRepo   *repositories.ResourceRepository
	membershipRepo *repositories.MembershipRepository
	fileRepo       *repositories.FileRepository
	fileStorage    *filestorage.LocalStorage
	authzService   *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewResourceService creates a new ResourceService
func NewResourceService(
	resourceRepo *repositories.ResourceRepository,
	membershipRepo *repositories.MembershipRepository,
	fileRepo *repositories.FileRepository,
	fileStorage *filestorage.LocalStorage,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) ResourceService {
	return &resourceServiceImpl{
		resourceRepo:   resourceRepo,
		membershipRepo: membershipRepo,
		fileRepo:       fileRepo,
		fileStorage:    fileStorage,
		authzService:   authzService,
		logger:         logger,
	}
}

func (s *resourceServiceImpl) requireMember(ctx context.Context, communityID, userID int64) error {
	member, err := s.membershipRepo.IsActiveMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperrors.ErrNotAMember
	}
	return nil
}

// CreateResource shares a new file or link in the community
func (s *resourceServiceImpl) CreateResource(ctx context.Context, communityID, userID int64, req *dto.CreateResourceRequest, fileHeader *multipart.FileHeader) (*dto.ResourceResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	resource := &models.Resource{
		CommunityID: communityID,
		UploaderID:  userID,
		Kind:        models.ResourceKind(req.Kind),
		Title:       req.Title,
		Description: req.Description,
	}

	switch resource.Kind {
	case models.ResourceKindLink:
		if req.URL == "" {
			return nil, apperrors.NewBadRequestError("link resources require a URL")
		}
		url := req.URL
		resource.URL = &url

	case models.ResourceKindFile:
		if fileHeader == nil {
			return nil, apperrors.NewBadRequestError("file resources require an uploaded file")
		}
		fileURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "resources")
		if err != nil {
			s.logger.Error().Err(err).Int64("communityID", communityID).Msg("Failed to save resource file")
			return nil, err
		}
		fileID, err := s.fileRepo.Create(ctx, &models.File{
			FileName:   fileHeader.Filename,
			FilePath:   s.fileStorage.RelativePath(fileURL),
			FileURL:    fileURL,
			FileSize:   fileHeader.Size,
			MimeType:   fileHeader.Header.Get("Content-Type"),
			Scope:      models.FileScopeResource,
			ScopeID:    communityID,
			UploadedBy: userID,
		})
		if err != nil {
			return nil, err
		}
		resource.FileID = &fileID
	}

	if _, err := s.resourceRepo.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("resourceID", resource.ID).
		Int64("communityID", communityID).
		Str("kind", string(resource.Kind)).
		Msg("Resource shared")

	return s.GetResource(ctx, resource.ID, userID)
}

// GetResource retrieves a resource, member only
func (s *resourceServiceImpl) GetResource(ctx context.Context, id, userID int64) (*dto.ResourceResponse, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, resource.CommunityID, userID); err != nil {
		return nil, err
	}

	response := dto.ToResourceResponse(resource)
	return &response, nil
}

// ListResources lists a community's resources with kind and text filters
func (s *resourceServiceImpl) ListResources(ctx context.Context, communityID, userID int64, req *dto.ListResourcesRequest) (*dto.ResourceListResponse, error) {
	if err := s.requireMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	filter := repositories.ResourceFilter{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Kind != "" {
		kind := models.ResourceKind(req.Kind)
		filter.Kind = &kind
	}

	resources, err := s.resourceRepo.List(ctx, communityID, userID, filter)
	if err != nil {
		return nil, err
	}

	response := dto.ToResourceListResponse(resources)
	return &response, nil
}

// UpdateResource edits a resource's metadata, uploader or moderator only
func (s *resourceServiceImpl) UpdateResource(ctx context.Context, id, userID int64, req *dto.UpdateResourceRequest) (*dto.ResourceResponse, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authzService.CanManageResource(ctx, resource, userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("only the uploader or a moderator can edit this resource")
	}

	resource.Title = req.Title
	resource.Description = req.Description
	if resource.Kind == models.ResourceKindLink && req.URL != "" {
		url := req.URL
		resource.URL = &url
	}

	if err := s.resourceRepo.Update(ctx, resource); err != nil {
		return nil, err
	}

	return s.GetResource(ctx, id, userID)
}

// DeleteResource removes a resource, uploader or moderator only
func (s *resourceServiceImpl) DeleteResource(ctx context.Context, id, userID int64) error {
	resource, err := s.resourceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	allowed, err := s.authzService.CanManageResource(ctx, resource, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("only the uploader or a moderator can delete this resource")
	}

	if err := s.resourceRepo.Delete(ctx, id); err != nil {
		return err
	}

	if resource.FileID != nil {
		if file, err := s.fileRepo.GetByID(ctx, *resource.FileID); err == nil {
			if err := s.fileStorage.DeleteFile(file.FilePath); err != nil {
				s.logger.Warn().Err(err).Str("path", file.FilePath).Msg("Failed to delete resource file")
			}
			_ = s.fileRepo.Delete(ctx, file.ID)
		}
	}

	return nil
}

// Download returns the resource's file metadata and counts the download
func (s *resourceServiceImpl) Download(ctx context.Context, id, userID int64) (*models.File, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, resource.CommunityID, userID); err != nil {
		return nil, err
	}

	if resource.Kind != models.ResourceKindFile || resource.FileID == nil {
		return nil, apperrors.ErrResourceHasNoFile
	}

	file, err := s.fileRepo.GetByID(ctx, *resource.FileID)
	if err != nil {
		return nil, err
	}
	// Hand the caller an absolute path it can serve directly
	file.FilePath = s.fileStorage.GetFullPath(file.FileURL)

	if err := s.resourceRepo.IncrementDownloadCount(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("resourceID", id).Msg("Failed to count download")
	}

	return file, nil
}

// Like records the user's like on a resource
func (s *resourceServiceImpl) Like(ctx context.Context, id, userID int64) (*dto.LikeResponse, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, resource.CommunityID, userID); err != nil {
		return nil, err
	}

	if err := s.resourceRepo.AddLike(ctx, id, userID); err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: true}, nil
}

// Unlike removes the user's like from a resource
func (s *resourceServiceImpl) Unlike(ctx context.Context, id, userID int64) (*dto.LikeResponse, error) {
	if _, err := s.resourceRepo.RemoveLike(ctx, id, userID); err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: false}, nil
}
