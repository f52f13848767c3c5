package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/repository"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidName         = errors.New("invalid name")
	ErrUploadFailed        = errors.New("upload failed")
	ErrStorageDeleteFailed = errors.New("storage delete failed")
)

// ownedFile resolves a file and checks it belongs to userID. Existence is
// checked before ownership.
func ownedFile(ctx context.Context, repo repository.FileRepository, userID, fileID string) (*model.File, error) {
	file, err := repo.ByID(ctx, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if !file.OwnedBy(userID) {
		return nil, fmt.Errorf("file %s: %w", fileID, ErrForbidden)
	}

	return file, nil
}

func ownedFolder(ctx context.Context, repo repository.FolderRepository, userID, folderID string) (*model.Folder, error) {
	folder, err := repo.ByID(ctx, folderID)
	if errors.Is(err, repository.ErrFolderNotFound) {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	if !folder.OwnedBy(userID) {
		return nil, fmt.Errorf("folder %s: %w", folderID, ErrForbidden)
	}

	return folder, nil
}
