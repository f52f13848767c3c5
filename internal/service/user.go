package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/repository"
)

type UserService struct {
	userRepository repository.UserRepository
	fileService    *FileService
	emailService   *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	fileService *FileService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		fileService:    fileService,
		emailService:   emailService,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes every stored object first. If any of them cannot be
// deleted the account is kept, so the user can retry instead of leaving
// objects nobody can reach.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.ByID(ctx, userID)
	if err != nil {
		return err
	}

	err = s.fileService.DeleteAllForUser(ctx, userID)
	if err != nil {
		slog.Error("account kept, some files could not be deleted", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete user files: %w", err)
	}

	// Foreign key CASCADE deletes the folders and any remaining file rows
	err = s.userRepository.Delete(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	err = s.emailService.SendAccountDeletedEmail(ctx, user.Email, user.Name)
	if err != nil {
		slog.Warn("failed to send account deleted email", "user_id", userID, "error", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}
