package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
	"github.com/emre/collabhub/internal/pkg/auth"
	"github.com/emre/collabhub/internal/pkg/filestorage"
)

// AuthService defines the interface for authentication and profile operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    *repositories.UserRepository
	tokenRepo   *repositories.TokenRepository
	fileRepo    *repositories.FileRepository
	fileStorage *filestorage.LocalStorage
	jwtService  *auth.JWTService
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo *repositories.UserRepository,
	tokenRepo *repositories.TokenRepository,
	fileRepo *repositories.FileRepository,
	fileStorage *filestorage.LocalStorage,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		fileRepo:    fileRepo,
		fileStorage: fileStorage,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Register creates a new user account and returns an authenticated session
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	// Pre-check for a friendlier error; the unique constraint still backs this up
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hashedPassword,
		DisplayName: req.DisplayName,
		GlobalRole:  models.GlobalRoleUser,
		IsActive:    true,
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", req.Email).Msg("Failed to create user")
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User registered")
	return s.issueSession(ctx, user)
}

// Login verifies credentials and returns an authenticated session
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login timestamp")
	}

	return s.issueSession(ctx, user)
}

// issueSession generates a token pair and persists the refresh token
func (s *authServiceImpl) issueSession(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token pair")
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	}); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to persist refresh token")
		return nil, err
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           accessToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(expiresIn),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresIn: int64(refreshExpiresIn),
		},
		User: dto.ToUserResponse(user),
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked, refresh tokens are single use.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to revoke refresh token")
		return nil, err
	}

	accessToken, newRefreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshToken,
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	}); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresIn: int64(refreshExpiresIn),
	}, nil
}

// Logout revokes the given refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			// Logging out with an unknown token is not an error worth surfacing
			return nil
		}
		return err
	}
	return nil
}

// GetProfile returns the user's own profile
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AvatarFileID != nil {
		if avatar, err := s.fileRepo.GetByID(ctx, *user.AvatarFileID); err == nil {
			user.Avatar = avatar
		}
	}

	response := dto.ToUserResponse(user)
	return &response, nil
}

// UpdateProfile updates the user's display name
func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req.DisplayName); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UpdateAvatar stores a new avatar image and links it to the user
func (s *authServiceImpl) UpdateAvatar(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fileURL, err := s.fileStorage.SaveFileWithPath(fileHeader, "avatars")
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to save avatar file")
		return nil, err
	}

	file := &models.File{
		FileName:   fileHeader.Filename,
		FilePath:   s.fileStorage.RelativePath(fileURL),
		FileURL:    fileURL,
		FileSize:   fileHeader.Size,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Scope:      models.FileScopeAvatar,
		ScopeID:    userID,
		UploadedBy: userID,
	}
	fileID, err := s.fileRepo.Create(ctx, file)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, &fileID); err != nil {
		return nil, err
	}

	// Remove the previous avatar after the new one is in place
	if user.AvatarFileID != nil {
		if old, err := s.fileRepo.GetByID(ctx, *user.AvatarFileID); err == nil {
			if err := s.fileStorage.DeleteFile(old.FilePath); err != nil {
				s.logger.Warn().Err(err).Str("path", old.FilePath).Msg("Failed to delete old avatar file")
			}
			if err := s.fileRepo.Delete(ctx, old.ID); err != nil {
				s.logger.Warn().Err(err).Int64("fileID", old.ID).Msg("Failed to delete old avatar record")
			}
		}
	}

	return s.GetProfile(ctx, userID)
}

// ChangePassword verifies the current password and replaces it
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	// Invalidate every open session, the password change should log out
	// other devices.
	if err := s.tokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions after password change")
	}

	return nil
}
