package placement

import (
	"context"
	"log/slog"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	"cardshelf/internal/domain/repositories"
	placementRepo "cardshelf/internal/domain/repositories/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
)

// placementService implements PlacementService: writes go through the
// coordinator, reads go straight to the repositories.
type placementService struct {
	*Coordinator
	folderRepo placementRepo.FolderRepository
	cardRepo   placementRepo.CardRepository
	logger     *slog.Logger
}

// NewPlacementService wires the guard, ordering index and coordinator over the given store
func NewPlacementService(
	folderRepo placementRepo.FolderRepository,
	cardRepo placementRepo.CardRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) placementSvc.PlacementService {
	guard := NewOwnershipGuard(folderRepo, cardRepo)
	coordinator := NewCoordinator(folderRepo, cardRepo, txManager, guard, NewOrderingIndex(folderRepo), logger)

	return &placementService{
		Coordinator: coordinator,
		folderRepo:  folderRepo,
		cardRepo:    cardRepo,
		logger:      logger,
	}
}

// GetFolder retrieves a single folder
func (s *placementService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	if err := validateID("folder_id", folderID); err != nil {
		return nil, err
	}
	folder, err := s.folderRepo.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, asNotFound(err, domain.ResourceFolder)
	}
	return folder, nil
}

// ListFolders returns the user's folders as a flat list with card counts
func (s *placementService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.folderRepo.ListByUser(ctx, userID)
}

// ListFolderTree builds the nested folder tree for a user
func (s *placementService) ListFolderTree(ctx context.Context, userID string) ([]*models.FolderTreeNode, error) {
	folders, err := s.folderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tree := BuildTree(folders)
	for _, orphan := range tree.Orphans {
		s.logger.Warn("folder promoted to root while building tree",
			"user_id", userID,
			"folder_id", orphan.FolderID,
			"parent_id", orphan.ParentID,
			"reason", orphan.Reason,
		)
	}

	return tree.Roots, nil
}

// GetCard retrieves a single card
func (s *placementService) GetCard(ctx context.Context, userID, cardID string) (*models.Card, error) {
	if err := validateID("card_id", cardID); err != nil {
		return nil, err
	}
	card, err := s.cardRepo.GetByID(ctx, cardID, userID)
	if err != nil {
		return nil, asNotFound(err, domain.ResourceCard)
	}
	return card, nil
}

// ListCards lists the user's cards, most recently updated first
func (s *placementService) ListCards(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error) {
	if filter.FolderID != nil && filter.Uncategorized {
		return nil, invalid("folder_id and uncategorized cannot be combined")
	}
	if filter.FolderID != nil {
		if err := validateID("folder_id", *filter.FolderID); err != nil {
			return nil, err
		}
	}
	return s.cardRepo.List(ctx, userID, filter)
}
