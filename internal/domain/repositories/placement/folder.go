package placement

import (
	"context"

	"cardshelf/internal/domain/models/placement"
)

// FolderRepository defines data access operations for folders.
// Every method is scoped by user ID; a row owned by another user behaves as absent.
type FolderRepository interface {
	// Create inserts a folder. A duplicate (user, parent, name) returns *domain.ConflictError.
	Create(ctx context.Context, folder *placement.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, userID string) (*placement.Folder, error)

	// GetByIDForUpdate retrieves a folder and locks its row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id, userID string) (*placement.Folder, error)

	// FindSiblingByName returns the folder with this name under parentID, or nil
	FindSiblingByName(ctx context.Context, userID string, parentID *string, name string) (*placement.Folder, error)

	// MaxSiblingOrder returns the highest order under parentID; found is false when there are no siblings
	MaxSiblingOrder(ctx context.Context, userID string, parentID *string) (max int, found bool, err error)

	// Update writes name, parent, order and updated_at
	Update(ctx context.Context, folder *placement.Folder) error

	// Delete removes the folder row
	Delete(ctx context.Context, id, userID string) error

	// ReparentChildren moves every direct child of folderID under newParentID
	ReparentChildren(ctx context.Context, userID, folderID string, newParentID *string) (int64, error)

	// UpdateOrders writes the order of each listed folder
	UpdateOrders(ctx context.Context, userID string, items []placement.FolderOrder) error

	// ListByUser returns every folder of the user (flat) with card counts
	ListByUser(ctx context.Context, userID string) ([]placement.Folder, error)

	// LockHierarchy serializes structural changes to the user's tree until the transaction ends
	LockHierarchy(ctx context.Context, userID string) error
}
