package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	Files(ctx context.Context, userID string) ([]*model.File, error)
	FilesInFolder(ctx context.Context, userID, folderID string) ([]*model.File, error)
	UnfiledFiles(ctx context.Context, userID string) ([]*model.File, error)
	UpdateFolder(ctx context.Context, file *model.File) error
	Delete(ctx context.Context, id string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (id, user_id, storage_ref, url, name, format, size, folder_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.StorageRef,
		file.URL,
		file.Name,
		file.Format,
		file.Size,
		file.FolderID,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Files(ctx context.Context, userID string) ([]*model.File, error) {
	query := `SELECT * FROM files WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.selectFiles(ctx, query, userID)
}

func (r *fileRepository) FilesInFolder(ctx context.Context, userID, folderID string) ([]*model.File, error) {
	query := `SELECT * FROM files WHERE user_id = $1 AND folder_id = $2 ORDER BY created_at DESC, id DESC`
	return r.selectFiles(ctx, query, userID, folderID)
}

func (r *fileRepository) UnfiledFiles(ctx context.Context, userID string) ([]*model.File, error) {
	query := `SELECT * FROM files WHERE user_id = $1 AND folder_id IS NULL ORDER BY created_at DESC, id DESC`
	return r.selectFiles(ctx, query, userID)
}

func (r *fileRepository) selectFiles(ctx context.Context, query string, args ...any) ([]*model.File, error) {
	files := []*model.File{}

	err := r.db.SelectContext(ctx, &files, query, args...)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// UpdateFolder persists file.FolderID, the only mutable field of a file.
func (r *fileRepository) UpdateFolder(ctx context.Context, file *model.File) error {
	query := `UPDATE files SET folder_id = $1 WHERE id = $2 AND user_id = $3`

	result, err := r.db.ExecContext(ctx, query, file.FolderID, file.ID, file.UserID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrFileNotFound)
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrFileNotFound)
}
