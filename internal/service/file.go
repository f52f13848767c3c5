package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/repository"
	"github.com/mycloudbox/mycloudbox/internal/storage"
	"go.uber.org/multierr"
)

type FileService struct {
	fileRepo      repository.FileRepository
	folderRepo    repository.FolderRepository
	gateway       storage.Gateway
	presignExpiry time.Duration
	now           func() time.Time
}

func NewFileService(
	fileRepo repository.FileRepository,
	folderRepo repository.FolderRepository,
	gateway storage.Gateway,
	presignExpiry time.Duration,
) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		folderRepo:    folderRepo,
		gateway:       gateway,
		presignExpiry: presignExpiry,
		now:           time.Now,
	}
}

// Upload sends data to the storage gateway and records what it returned.
// Note: size and extension checks are done by the caller before calling Upload
func (s *FileService) Upload(ctx context.Context, userID string, data []byte, originalName string, folderID *string) (*model.File, error) {
	if folderID != nil {
		_, err := ownedFolder(ctx, s.folderRepo, userID, *folderID)
		if err != nil {
			return nil, err
		}
	}

	obj, err := s.gateway.Upload(ctx, data, originalName)
	if err != nil {
		slog.Error("storage upload failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	var name *string
	if n := strings.TrimSpace(originalName); n != "" {
		name = &n
	}

	file := &model.File{
		ID:         uuid.New().String(),
		UserID:     userID,
		StorageRef: obj.Ref,
		URL:        obj.URL,
		Name:       name,
		Format:     obj.Format,
		Size:       obj.Size,
		FolderID:   folderID,
		CreatedAt:  s.now(),
	}

	err = s.fileRepo.Create(ctx, file)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded object
		delErr := s.gateway.Delete(context.WithoutCancel(ctx), obj.Ref, model.Classify(obj.Format))
		if delErr != nil {
			slog.Error("failed to delete object from storage during cleanup", "error", delErr, "ref", obj.Ref)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	slog.Info("file uploaded", "user_id", userID, "file_id", file.ID, "format", file.Format, "size", file.Size)
	return file, nil
}

// List returns all of the user's files, newest first.
func (s *FileService) List(ctx context.Context, userID string) ([]*model.File, error) {
	return s.fileRepo.Files(ctx, userID)
}

func (s *FileService) ListByFolder(ctx context.Context, userID, folderID string) ([]*model.File, error) {
	_, err := ownedFolder(ctx, s.folderRepo, userID, folderID)
	if err != nil {
		return nil, err
	}

	return s.fileRepo.FilesInFolder(ctx, userID, folderID)
}

func (s *FileService) ListUnfiled(ctx context.Context, userID string) ([]*model.File, error) {
	return s.fileRepo.UnfiledFiles(ctx, userID)
}

// Public returns the shareable projection of a file. There is no owner
// check: anyone holding the id can read it.
func (s *FileService) Public(ctx context.Context, fileID string) (*model.PublicFile, error) {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return file.Public(), nil
}

// Move files the file into folderID, or unfiles it when folderID is nil.
func (s *FileService) Move(ctx context.Context, userID, fileID string, folderID *string) (*model.File, error) {
	file, err := ownedFile(ctx, s.fileRepo, userID, fileID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		_, err = ownedFolder(ctx, s.folderRepo, userID, *folderID)
		if err != nil {
			return nil, err
		}
	}

	file.FolderID = folderID
	err = s.fileRepo.UpdateFolder(ctx, file)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}

	return file, nil
}

// Delete removes the object from the storage gateway and then the record.
// If the gateway refuses, the record is left untouched.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := ownedFile(ctx, s.fileRepo, userID, fileID)
	if err != nil {
		return err
	}

	return s.deleteFile(ctx, file)
}

func (s *FileService) deleteFile(ctx context.Context, file *model.File) error {
	if file.StorageRef != "" {
		kind := model.Classify(file.Format)
		err := s.gateway.Delete(ctx, file.StorageRef, kind)
		if err != nil {
			// A concurrent delete may have removed both object and record
			_, lookupErr := s.fileRepo.ByID(context.WithoutCancel(ctx), file.ID)
			if errors.Is(lookupErr, repository.ErrFileNotFound) {
				return fmt.Errorf("file %s: %w", file.ID, ErrNotFound)
			}

			slog.Error("storage delete failed, keeping file record",
				"error", err,
				"file_id", file.ID,
				"ref", file.StorageRef,
				"kind", kind,
			)
			return fmt.Errorf("%w: %w", ErrStorageDeleteFailed, err)
		}
	}

	// The object is gone, so the record must follow even if the caller hung up
	err := s.fileRepo.Delete(context.WithoutCancel(ctx), file.ID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return fmt.Errorf("file %s: %w", file.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return nil
}

// DownloadURL returns a short-lived private link when the gateway can sign
// one, and the stored URL otherwise.
func (s *FileService) DownloadURL(ctx context.Context, userID, fileID string) (string, error) {
	file, err := ownedFile(ctx, s.fileRepo, userID, fileID)
	if err != nil {
		return "", err
	}

	presigner, ok := s.gateway.(storage.Presigner)
	if !ok || file.StorageRef == "" {
		return file.URL, nil
	}

	url, err := presigner.PresignedURL(ctx, file.StorageRef, model.Classify(file.Format), s.presignExpiry)
	if err != nil {
		// Fallback to the stored URL if presigning fails
		slog.Warn("failed to presign download URL", "error", err, "file_id", file.ID)
		return file.URL, nil
	}

	return url, nil
}

// DeleteAllForUser runs the full delete sequence for every file the user
// owns. It keeps going after a failure and returns every error it saw.
func (s *FileService) DeleteAllForUser(ctx context.Context, userID string) error {
	files, err := s.fileRepo.Files(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user files: %w", err)
	}

	var errs error
	for _, file := range files {
		err = s.deleteFile(ctx, file)
		if err != nil && !errors.Is(err, ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("file %s: %w", file.ID, err))
		}
	}

	return errs
}
