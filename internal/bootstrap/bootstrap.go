package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/emre/collabhub/docs" // generated swagger docs
	appAuth "github.com/emre/collabhub/internal/app/auth"
	appControllers "github.com/emre/collabhub/internal/app/controllers"
	appMigrations "github.com/emre/collabhub/internal/app/migrations"
	appRepos "github.com/emre/collabhub/internal/app/repositories"
	appRoutes "github.com/emre/collabhub/internal/app/routes"
	appServices "github.com/emre/collabhub/internal/app/services"
	"github.com/emre/collabhub/internal/config"
	"github.com/emre/collabhub/internal/db"
	appMiddleware "github.com/emre/collabhub/internal/middleware"
	pkgAuth "github.com/emre/collabhub/internal/pkg/auth"
	"github.com/emre/collabhub/internal/pkg/filestorage"
	"github.com/emre/collabhub/internal/pkg/logger"
	"github.com/emre/collabhub/internal/pkg/websocket"
	"github.com/emre/collabhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService      appServices.AuthService
	CommunityService appServices.CommunityService
	ChatService      appServices.ChatService
	ResourceService  appServices.ResourceService
	EventService     appServices.EventService

	AuthController      *appControllers.AuthController
	UserController      *appControllers.UserController
	CommunityController *appControllers.CommunityController
	ChatController      *appControllers.ChatController
	ResourceController  *appControllers.ResourceController
	EventController     *appControllers.EventController

	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding failure is not fatal; the platform admin can be created by hand
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	// The base URL must match the static file serving endpoint
	fileStorageBaseURL := cfg.BaseURL() + "/uploads"
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.MembershipRepository,
		deps.Repos.UserRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr, cfg.Chat.SnapshotSize)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.Repos.FileRepository,
		deps.FileStorage,
		deps.JWTService,
		lgr,
	)

	deps.CommunityService = appServices.NewCommunityService(
		deps.Repos.CommunityRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.FileRepository,
		deps.FileStorage,
		deps.AuthzService,
		lgr,
	)

	deps.ChatService = appServices.NewChatService(
		deps.Repos.MessageRepository,
		deps.Repos.ReactionRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.FileRepository,
		deps.FileStorage,
		deps.AuthzService,
		deps.Hub,
		lgr,
	)

	// New subscribers receive their snapshot from the chat service
	deps.Hub.SetSnapshotProvider(deps.ChatService)

	deps.ResourceService = appServices.NewResourceService(
		deps.Repos.ResourceRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.FileRepository,
		deps.FileStorage,
		deps.AuthzService,
		lgr,
	)

	deps.EventService = appServices.NewEventService(
		deps.Repos.EventRepository,
		deps.Repos.MembershipRepository,
		deps.AuthzService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.UserController = appControllers.NewUserController(deps.AuthService)
	deps.CommunityController = appControllers.NewCommunityController(deps.CommunityService)
	deps.ChatController = appControllers.NewChatController(deps.ChatService)
	deps.ResourceController = appControllers.NewResourceController(deps.ResourceService)
	deps.EventController = appControllers.NewEventController(deps.EventService)

	deps.WSHandler = websocket.NewHandler(deps.Hub, deps.Repos.MembershipRepository, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()
	router.Use(appMiddleware.RequestLogger())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.CommunityController,
		deps.ChatController,
		deps.ResourceController,
		deps.EventController,
		deps.WSHandler,
		deps.AuthMiddleware,
	)

	return router
}

// parseDuration parses a duration string, falling back to a default on error.
func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
