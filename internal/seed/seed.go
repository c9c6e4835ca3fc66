package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/emre/collabhub/internal/app/models"
	appRepos "github.com/emre/collabhub/internal/app/repositories"
	"github.com/emre/collabhub/internal/pkg/apperrors"
)

const defaultAdminEmail = "admin@collabhub.app"

// CreateDefaultData creates the platform admin account if it does not exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	_, err := userRepo.FindByEmail(ctx, defaultAdminEmail)
	if err == nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Msg("Error checking for admin user")
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default admin password")
		return err
	}

	admin := &appModels.User{
		Email:       defaultAdminEmail,
		Password:    string(hashedPassword),
		DisplayName: "Platform Admin",
		GlobalRole:  appModels.GlobalRoleAdmin,
		IsActive:    true,
	}

	adminID, err := userRepo.Create(ctx, admin)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created")
	return nil
}
