package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/repository"
	"github.com/mycloudbox/mycloudbox/internal/validation"
	"go.uber.org/multierr"
)

// CascadeResult reports what a folder delete did to the files inside it.
type CascadeResult struct {
	FolderID string        `json:"folderId"`
	Deleted  []string      `json:"deleted"`
	Detached int           `json:"detached"`
	Failed   []FileFailure `json:"failed,omitempty"`
}

type FileFailure struct {
	FileID string  `json:"fileId"`
	Name   *string `json:"name"`
	Reason string  `json:"reason"`
}

// CascadeError is returned when some files of a folder could not be
// deleted. The folder and the failed files are kept.
type CascadeError struct {
	Result *CascadeResult
	errs   error
}

func (e *CascadeError) Error() string {
	total := len(e.Result.Deleted) + len(e.Result.Failed)
	return fmt.Sprintf("folder %s kept: %d of %d files could not be deleted: %v",
		e.Result.FolderID, len(e.Result.Failed), total, e.errs)
}

func (e *CascadeError) Unwrap() error {
	return e.errs
}

type FolderService struct {
	folderRepo repository.FolderRepository
	fileRepo   repository.FileRepository
	files      *FileService
	now        func() time.Time
}

func NewFolderService(
	folderRepo repository.FolderRepository,
	fileRepo repository.FileRepository,
	files *FileService,
) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		files:      files,
		now:        time.Now,
	}
}

func (s *FolderService) Create(ctx context.Context, userID, name string) (*model.Folder, error) {
	name, err := folderName(name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	folder := &model.Folder{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.folderRepo.Create(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// List returns the user's folders, newest first.
func (s *FolderService) List(ctx context.Context, userID string) ([]*model.Folder, error) {
	return s.folderRepo.Folders(ctx, userID)
}

// Rename changes the folder name. Renaming to the current name is a no-op.
func (s *FolderService) Rename(ctx context.Context, userID, folderID, name string) (*model.Folder, error) {
	folder, err := ownedFolder(ctx, s.folderRepo, userID, folderID)
	if err != nil {
		return nil, err
	}

	name, err = folderName(name)
	if err != nil {
		return nil, err
	}

	if name == folder.Name {
		return folder, nil
	}

	folder.Name = name
	folder.UpdatedAt = s.now()

	err = s.folderRepo.Rename(ctx, folder)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rename folder: %w", err)
	}

	return folder, nil
}

// Delete removes a folder. With deleteFiles the files inside are deleted
// through the storage gateway one by one; otherwise they are moved to the
// unfiled list. If any file fails to delete, the folder stays and a
// *CascadeError carries the per-file report.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string, deleteFiles bool) (*CascadeResult, error) {
	folder, err := ownedFolder(ctx, s.folderRepo, userID, folderID)
	if err != nil {
		return nil, err
	}

	result := &CascadeResult{FolderID: folder.ID, Deleted: []string{}}

	if deleteFiles {
		err = s.deleteContents(ctx, userID, folder, result)
		if err != nil {
			return result, err
		}
	}

	// Anything still filed here (or added concurrently) is detached in the
	// same transaction that removes the folder.
	detached, err := s.folderRepo.DeleteDetachingFiles(ctx, folder.ID)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete folder: %w", err)
	}
	result.Detached = int(detached)

	slog.Info("folder deleted",
		"user_id", userID,
		"folder_id", folder.ID,
		"delete_files", deleteFiles,
		"deleted", len(result.Deleted),
		"detached", result.Detached,
	)
	return result, nil
}

func (s *FolderService) deleteContents(ctx context.Context, userID string, folder *model.Folder, result *CascadeResult) error {
	files, err := s.fileRepo.FilesInFolder(ctx, userID, folder.ID)
	if err != nil {
		return fmt.Errorf("failed to list folder files: %w", err)
	}

	var errs error
	for _, file := range files {
		err = s.files.deleteFile(ctx, file)
		switch {
		case err == nil, errors.Is(err, ErrNotFound):
			result.Deleted = append(result.Deleted, file.ID)
		default:
			errs = multierr.Append(errs, fmt.Errorf("file %s: %w", file.ID, err))
			result.Failed = append(result.Failed, FileFailure{
				FileID: file.ID,
				Name:   file.Name,
				Reason: err.Error(),
			})
		}
	}

	if errs != nil {
		slog.Warn("folder kept after partial cascade delete",
			"user_id", userID,
			"folder_id", folder.ID,
			"deleted", len(result.Deleted),
			"failed", len(result.Failed),
		)
		return &CascadeError{Result: result, errs: errs}
	}

	return nil
}

func folderName(name string) (string, error) {
	name = validation.NormalizeName(name)

	err := validation.ValidateFolderName(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
	}

	return name, nil
}
