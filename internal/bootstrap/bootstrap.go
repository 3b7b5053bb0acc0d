// Package bootstrap assembles the application: configuration, logging,
// database, cache, mail, repositories, services, controllers and routes.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/atomclub/attendance/internal/app/controllers"
	appMigrations "github.com/atomclub/attendance/internal/app/migrations"
	appRepos "github.com/atomclub/attendance/internal/app/repositories"
	appRoutes "github.com/atomclub/attendance/internal/app/routes"
	appServices "github.com/atomclub/attendance/internal/app/services"
	"github.com/atomclub/attendance/internal/cache"
	"github.com/atomclub/attendance/internal/config"
	"github.com/atomclub/attendance/internal/db"
	appMiddleware "github.com/atomclub/attendance/internal/middleware"
	pkgAuth "github.com/atomclub/attendance/internal/pkg/auth"
	"github.com/atomclub/attendance/internal/pkg/email"
	"github.com/atomclub/attendance/internal/pkg/filestorage"
	"github.com/atomclub/attendance/internal/pkg/logger"
	"github.com/atomclub/attendance/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                *appRepos.Repositories
	Services             *appServices.Services
	JWTService           *pkgAuth.JWTService
	AuthController       *appControllers.AuthController
	AttendanceController *appControllers.AttendanceController
	FacultyController    *appControllers.FacultyController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	FileStorage          *filestorage.LocalStorage
	Cache                *cache.Cache
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default accounts
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)
	if err := migrator.Run(context.Background(), migrationsDir); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding is best effort; an existing deployment does not need it.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and
// supporting infrastructure
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	storageBaseURL := "http://localhost:" + cfg.Server.Port + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, storageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.CacheTTL())
	if !deps.Cache.Healthy(context.Background()) {
		lgr.Warn().Str("addr", cfg.Redis.Addr).Msg("Redis not reachable, directory reads fall through to the database")
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenDuration(),
		RefreshTokenExp: cfg.RefreshTokenDuration(),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	notifier := email.NewSMTPNotifier(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}, lgr)

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, notifier, deps.FileStorage, deps.Cache, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Services.Auth)

	deps.AuthController = appControllers.NewAuthController(deps.Services.Auth, lgr)
	deps.AttendanceController = appControllers.NewAttendanceController(deps.Services.Attendance, lgr)
	deps.FacultyController = appControllers.NewFacultyController(deps.Services.Faculty, lgr)

	return deps, nil
}

// healthChecker probes the database pool and the cache
type healthChecker struct {
	dbPool *pgxpool.Pool
	cache  *cache.Cache
}

func (h *healthChecker) Healthy(c *gin.Context) (bool, bool) {
	ctx := c.Request.Context()
	dbOK := h.dbPool != nil && h.dbPool.Ping(ctx) == nil
	return dbOK, h.cache.Healthy(ctx)
}

// SetupRouter configures the Gin engine with middleware and routes
func SetupRouter(cfg *config.Config, dbPool *pgxpool.Pool, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(appMiddleware.Metrics())
	router.Use(appMiddleware.NewTokenBucket(cfg.RateLimit.Burst, cfg.RateLimit.PerMinute).GinMiddleware())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AttendanceController,
		deps.FacultyController,
		deps.AuthMiddleware,
		&healthChecker{dbPool: dbPool, cache: deps.Cache},
	)

	return router
}
