package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appAuth "github.com/mertcelik/eduledger/internal/app/auth"
	appControllers "github.com/mertcelik/eduledger/internal/app/controllers"
	appMigrations "github.com/mertcelik/eduledger/internal/app/migrations"
	appRepos "github.com/mertcelik/eduledger/internal/app/repositories"
	appRoutes "github.com/mertcelik/eduledger/internal/app/routes"
	appServices "github.com/mertcelik/eduledger/internal/app/services"
	"github.com/mertcelik/eduledger/internal/config"
	"github.com/mertcelik/eduledger/internal/db"
	appMiddleware "github.com/mertcelik/eduledger/internal/middleware"
	pkgAuth "github.com/mertcelik/eduledger/internal/pkg/auth"
	"github.com/mertcelik/eduledger/internal/pkg/helpers"
	"github.com/mertcelik/eduledger/internal/pkg/logger"
	"github.com/mertcelik/eduledger/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store                appRepos.Store
	AuthService          *appServices.AuthService
	OfferingService      *appServices.OfferingService
	LicenseService       *appServices.LicenseService
	ProgressService      *appServices.ProgressService
	CredentialService    *appServices.CredentialService
	AdminService         *appServices.AdminService
	AuthController       *appControllers.AuthController
	OfferingController   *appControllers.OfferingController
	LicenseController    *appControllers.LicenseController
	ProgressController   *appControllers.ProgressController
	CredentialController *appControllers.CredentialController
	AdminController      *appControllers.AdminController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	PauseMiddleware      *appMiddleware.PauseMiddleware
	JWTService           *pkgAuth.JWTService
	AuthzService         *appAuth.AuthorizationService
	Logger               zerolog.Logger
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

// SetupDatabase establishes the database connection, runs migrations and
// seeds the rows the ledger cannot run without.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
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

	if err := seed.CreateDefaultData(context.Background(), dbPool, cfg, lgr); err != nil {
		// The treasury and settings rows are load-bearing; offering seed
		// failures are logged inside and tolerated.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Store = appRepos.NewStore(database)

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Store)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Store, deps.JWTService, lgr)
	deps.OfferingService = appServices.NewOfferingService(deps.Store)
	deps.LicenseService = appServices.NewLicenseService(deps.Store, cfg, lgr)
	deps.ProgressService = appServices.NewProgressService(deps.Store, lgr)
	deps.CredentialService = appServices.NewCredentialService(deps.Store, deps.AuthzService, cfg, lgr)
	deps.AdminService = appServices.NewAdminService(deps.Store, cfg, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.PauseMiddleware = appMiddleware.NewPauseMiddleware(deps.AdminService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.OfferingController = appControllers.NewOfferingController(deps.OfferingService, lgr)
	deps.LicenseController = appControllers.NewLicenseController(deps.LicenseService, lgr)
	deps.ProgressController = appControllers.NewProgressController(deps.ProgressService, deps.OfferingService, lgr)
	deps.CredentialController = appControllers.NewCredentialController(deps.CredentialService, lgr)
	deps.AdminController = appControllers.NewAdminController(deps.AdminService, lgr)

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

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.OfferingController,
		deps.LicenseController,
		deps.ProgressController,
		deps.CredentialController,
		deps.AdminController,
		deps.AuthMiddleware,
		deps.PauseMiddleware,
	)

	return router
}
