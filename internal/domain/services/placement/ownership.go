package placement

import (
	"context"

	"cardshelf/internal/domain/models/placement"
)

// OwnershipGuard resolves ids on behalf of a user.
// Absent rows and rows owned by someone else both fail with domain.ErrNotFound,
// so callers cannot probe for other users' ids.
type OwnershipGuard interface {
	// ResolveFolder returns the user's folder; inside a transaction the row is locked
	ResolveFolder(ctx context.Context, userID, folderID string) (*placement.Folder, error)

	// ResolveCard returns the user's card; inside a transaction the row is locked
	ResolveCard(ctx context.Context, userID, cardID string) (*placement.Card, error)
}
