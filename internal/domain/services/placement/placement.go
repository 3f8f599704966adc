package placement

import (
	"context"
	"encoding/json"

	"cardshelf/internal/domain/models/placement"
)

// PlacementService is the public contract consumed by the HTTP layer.
// Every method is scoped to userID; ids the user does not own behave as absent.
type PlacementService interface {
	// CreateFolder creates a folder at the root or under ParentID
	CreateFolder(ctx context.Context, userID string, req *CreateFolderRequest) (*placement.Folder, error)

	// GetFolder retrieves a single folder
	GetFolder(ctx context.Context, userID, folderID string) (*placement.Folder, error)

	// RenameFolder changes a folder's name
	RenameFolder(ctx context.Context, userID, folderID string, req *RenameFolderRequest) (*placement.Folder, error)

	// MoveFolder reparents a folder (nil parent = root)
	MoveFolder(ctx context.Context, userID, folderID string, req *MoveFolderRequest) (*placement.Folder, error)

	// DeleteFolder deletes a folder, promoting its children and uncategorizing its cards
	DeleteFolder(ctx context.Context, userID, folderID string) error

	// ReorderFolders writes explicit sibling order values
	ReorderFolders(ctx context.Context, userID string, req *ReorderFoldersRequest) error

	// ListFolders returns the user's folders as a flat list with card counts
	ListFolders(ctx context.Context, userID string) ([]placement.Folder, error)

	// ListFolderTree returns the user's folders nested by parent
	ListFolderTree(ctx context.Context, userID string) ([]*placement.FolderTreeNode, error)

	// CreateCard creates a card, optionally inside a folder
	CreateCard(ctx context.Context, userID string, req *CreateCardRequest) (*placement.Card, error)

	// GetCard retrieves a single card
	GetCard(ctx context.Context, userID, cardID string) (*placement.Card, error)

	// ListCards lists the user's cards
	ListCards(ctx context.Context, userID string, filter placement.CardFilter) ([]placement.Card, error)

	// UpdateCard edits title and/or content
	UpdateCard(ctx context.Context, userID, cardID string, req *UpdateCardRequest) (*placement.Card, error)

	// DeleteCard deletes a card
	DeleteCard(ctx context.Context, userID, cardID string) error

	// MoveCard places a card in a folder (nil = uncategorized)
	MoveCard(ctx context.Context, userID, cardID string, folderID *string) (*placement.Card, error)

	// ToggleStar flips a card's starred flag
	ToggleStar(ctx context.Context, userID, cardID string) (*placement.Card, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name" yaml:"name"`
	ParentID *string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"` // null for root
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// MoveFolderRequest represents a folder reparent request
type MoveFolderRequest struct {
	ParentID *string `json:"parent_id"` // null moves to root
}

// ReorderFoldersRequest carries a batch of explicit order values
type ReorderFoldersRequest struct {
	Folders []placement.FolderOrder `json:"folders"`
}

// CreateCardRequest represents a card creation request
type CreateCardRequest struct {
	Title    string          `json:"title"`
	Content  json.RawMessage `json:"content,omitempty"`
	FolderID *string         `json:"folder_id,omitempty"`
}

// UpdateCardRequest represents a partial card edit; nil fields are left unchanged
type UpdateCardRequest struct {
	Title   *string         `json:"title,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}
