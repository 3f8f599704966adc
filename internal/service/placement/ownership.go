package placement

import (
	"context"
	"errors"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementRepo "cardshelf/internal/domain/repositories/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
)

type ownershipGuard struct {
	folderRepo placementRepo.FolderRepository
	cardRepo   placementRepo.CardRepository
}

// NewOwnershipGuard creates a guard that resolves ids through the repositories.
// Rows are read with FOR UPDATE so a transaction validates and writes the same row version.
func NewOwnershipGuard(folderRepo placementRepo.FolderRepository, cardRepo placementRepo.CardRepository) placementSvc.OwnershipGuard {
	return &ownershipGuard{folderRepo: folderRepo, cardRepo: cardRepo}
}

func (g *ownershipGuard) ResolveFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	if err := validateID("folder_id", folderID); err != nil {
		return nil, err
	}
	folder, err := g.folderRepo.GetByIDForUpdate(ctx, folderID, userID)
	if err != nil {
		return nil, asNotFound(err, domain.ResourceFolder)
	}
	return folder, nil
}

func (g *ownershipGuard) ResolveCard(ctx context.Context, userID, cardID string) (*models.Card, error) {
	if err := validateID("card_id", cardID); err != nil {
		return nil, err
	}
	card, err := g.cardRepo.GetByIDForUpdate(ctx, cardID, userID)
	if err != nil {
		return nil, asNotFound(err, domain.ResourceCard)
	}
	return card, nil
}

// asNotFound swaps a repository not-found for the user-facing error naming resource
func asNotFound(err error, resource string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFound(resource)
	}
	return err
}
