package placement

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	Order     int       `json:"order" db:"sort_order"`
	CardCount int       `json:"card_count"` // Computed on list reads, not stored in DB
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top level
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderOrder is one entry of a reorder batch
type FolderOrder struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}
