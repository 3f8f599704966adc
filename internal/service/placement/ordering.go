package placement

import (
	"context"
	"fmt"

	models "cardshelf/internal/domain/models/placement"
	placementRepo "cardshelf/internal/domain/repositories/placement"
)

// OrderingIndex computes and writes explicit sibling order values
type OrderingIndex struct {
	folderRepo placementRepo.FolderRepository
}

// NewOrderingIndex creates an ordering index
func NewOrderingIndex(folderRepo placementRepo.FolderRepository) *OrderingIndex {
	return &OrderingIndex{folderRepo: folderRepo}
}

// NextOrder returns the order that appends a folder after its siblings under parentID
func (o *OrderingIndex) NextOrder(ctx context.Context, userID string, parentID *string) (int, error) {
	max, found, err := o.folderRepo.MaxSiblingOrder(ctx, userID, parentID)
	if err != nil {
		return 0, fmt.Errorf("compute sibling order: %w", err)
	}
	if !found {
		return 0, nil
	}
	return max + 1, nil
}

// Apply writes a validated batch of order values
func (o *OrderingIndex) Apply(ctx context.Context, userID string, items []models.FolderOrder) error {
	if len(items) == 0 {
		return nil
	}
	return o.folderRepo.UpdateOrders(ctx, userID, items)
}
