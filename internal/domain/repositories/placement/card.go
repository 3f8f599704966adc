package placement

import (
	"context"

	"cardshelf/internal/domain/models/placement"
)

// CardRepository defines data access operations for cards
type CardRepository interface {
	// Create inserts a card
	Create(ctx context.Context, card *placement.Card) error

	// GetByID retrieves a card by ID
	GetByID(ctx context.Context, id, userID string) (*placement.Card, error)

	// GetByIDForUpdate retrieves a card and locks its row for the rest of the transaction
	GetByIDForUpdate(ctx context.Context, id, userID string) (*placement.Card, error)

	// Update writes title, content, folder, star flag and updated_at
	Update(ctx context.Context, card *placement.Card) error

	// Delete removes a card
	Delete(ctx context.Context, id, userID string) error

	// DetachFromFolder sets folder_id to NULL for every card in folderID
	DetachFromFolder(ctx context.Context, userID, folderID string) (int64, error)

	// List returns the user's cards matching the filter, most recently updated first
	List(ctx context.Context, userID string, filter placement.CardFilter) ([]placement.Card, error)
}
