package placement

import (
	"encoding/json"
	"time"
)

type Card struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Title     string          `json:"title" db:"title"`
	Content   json.RawMessage `json:"content" db:"content"`     // Opaque editor document
	FolderID  *string         `json:"folder_id" db:"folder_id"` // NULL = uncategorized
	IsStarred bool            `json:"is_starred" db:"is_starred"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CardFilter narrows a card listing. FolderID and Uncategorized are mutually exclusive.
type CardFilter struct {
	FolderID      *string
	Uncategorized bool
	StarredOnly   bool
}
