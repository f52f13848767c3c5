package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/db"
	"github.com/mycloudbox/mycloudbox/internal/repository"
	"github.com/mycloudbox/mycloudbox/internal/service"
	"github.com/mycloudbox/mycloudbox/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	Gateway       storage.Gateway
	AuthService   *service.AuthService
	UserService   *service.UserService
	EmailService  *service.EmailService
	FileService   *service.FileService
	FolderService *service.FolderService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	gateway, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, gateway), nil
}

// Wire builds the repositories and services on top of an open database and
// a storage gateway.
func Wire(cfg *config.Config, database *sqlx.DB, gateway storage.Gateway) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	folderRepository := repository.NewFolderRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	fileService := service.NewFileService(fileRepository, folderRepository, gateway, cfg.S3PresignExpiry)
	folderService := service.NewFolderService(folderRepository, fileRepository, fileService)
	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.IsProduction(),
		cfg.JWTExpiry,
	)
	userService := service.NewUserService(userRepository, fileService, emailService)

	return &App{
		Cfg:           cfg,
		DB:            database,
		Gateway:       gateway,
		AuthService:   authService,
		UserService:   userService,
		EmailService:  emailService,
		FileService:   fileService,
		FolderService: folderService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
