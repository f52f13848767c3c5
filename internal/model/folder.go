package model

import "time"

// Folder groups files for a single owner. Folders are flat: there is no
// parent folder.
type Folder struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (f *Folder) OwnedBy(userID string) bool {
	return f.UserID == userID
}
