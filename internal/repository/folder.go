package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	ByID(ctx context.Context, id string) (*model.Folder, error)
	Folders(ctx context.Context, userID string) ([]*model.Folder, error)
	Rename(ctx context.Context, folder *model.Folder) error
	// DeleteDetachingFiles unfiles every file in the folder and deletes the
	// folder in one transaction. It returns the number of detached files.
	DeleteDetachingFiles(ctx context.Context, id string) (int64, error)
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) FolderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(ctx context.Context, folder *model.Folder) error {
	query := `INSERT INTO folders (id, user_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		folder.ID,
		folder.UserID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	return err
}

func (r *folderRepository) ByID(ctx context.Context, id string) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.GetContext(ctx, folder, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, err
	}

	return folder, nil
}

func (r *folderRepository) Folders(ctx context.Context, userID string) ([]*model.Folder, error) {
	folders := []*model.Folder{}
	query := `SELECT * FROM folders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	err := r.db.SelectContext(ctx, &folders, query, userID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Rename(ctx context.Context, folder *model.Folder) error {
	query := `UPDATE folders SET name = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`

	result, err := r.db.ExecContext(ctx, query, folder.Name, folder.UpdatedAt, folder.ID, folder.UserID)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrFolderNotFound)
}

func (r *folderRepository) DeleteDetachingFiles(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		rbErr := tx.Rollback()
		if rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.Error("failed to rollback folder delete", "error", rbErr, "folder_id", id)
		}
	}()

	result, err := tx.ExecContext(ctx, `UPDATE files SET folder_id = NULL WHERE folder_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to detach files: %w", err)
	}

	detached, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder: %w", err)
	}

	err = expectOneRow(result, ErrFolderNotFound)
	if err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit folder delete: %w", err)
	}

	return detached, nil
}

// expectOneRow turns "nothing matched" into notFound so repeated deletes of
// the same id are reported instead of silently succeeding.
func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
