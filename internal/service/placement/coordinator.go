package placement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	"cardshelf/internal/domain/repositories"
	placementRepo "cardshelf/internal/domain/repositories/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
)

// Coordinator is the single writer of folder and card rows.
// Each operation resolves ids through the guard and runs in exactly one transaction.
type Coordinator struct {
	folderRepo placementRepo.FolderRepository
	cardRepo   placementRepo.CardRepository
	txManager  repositories.TransactionManager
	guard      placementSvc.OwnershipGuard
	ordering   *OrderingIndex
	logger     *slog.Logger
	now        func() time.Time
}

// NewCoordinator creates a mutation coordinator
func NewCoordinator(
	folderRepo placementRepo.FolderRepository,
	cardRepo placementRepo.CardRepository,
	txManager repositories.TransactionManager,
	guard placementSvc.OwnershipGuard,
	ordering *OrderingIndex,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		folderRepo: folderRepo,
		cardRepo:   cardRepo,
		txManager:  txManager,
		guard:      guard,
		ordering:   ordering,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateFolder creates a folder after its siblings at the root or under req.ParentID
func (c *Coordinator) CreateFolder(ctx context.Context, userID string, req *placementSvc.CreateFolderRequest) (*models.Folder, error) {
	name, err := normalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}
	parentID, err := normalizeOptionalID("parent_id", req.ParentID)
	if err != nil {
		return nil, err
	}

	var folder *models.Folder
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if parentID != nil {
			if _, err := c.guard.ResolveFolder(txCtx, userID, *parentID); err != nil {
				return asNotFound(err, domain.ResourceParentFolder)
			}
		}

		if err := c.checkSiblingName(txCtx, userID, parentID, name, ""); err != nil {
			return err
		}

		order, err := c.ordering.NextOrder(txCtx, userID, parentID)
		if err != nil {
			return err
		}

		now := c.now()
		folder = &models.Folder{
			UserID:    userID,
			ParentID:  parentID,
			Name:      name,
			Order:     order,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return asNotFound(c.folderRepo.Create(txCtx, folder), domain.ResourceParentFolder)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("folder created",
		"id", folder.ID,
		"user_id", userID,
		"parent_id", folder.ParentID,
		"order", folder.Order,
	)
	return folder, nil
}

// RenameFolder changes a folder's name. Renaming to the current name is a no-op.
func (c *Coordinator) RenameFolder(ctx context.Context, userID, folderID string, req *placementSvc.RenameFolderRequest) (*models.Folder, error) {
	name, err := normalizeFolderName(req.Name)
	if err != nil {
		return nil, err
	}

	var folder *models.Folder
	changed := false
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := c.guard.ResolveFolder(txCtx, userID, folderID)
		if err != nil {
			return err
		}
		folder = current

		if current.Name == name {
			return nil
		}

		if err := c.checkSiblingName(txCtx, userID, current.ParentID, name, current.ID); err != nil {
			return err
		}

		current.Name = name
		current.UpdatedAt = c.now()
		changed = true
		return c.folderRepo.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		c.logger.Info("folder renamed", "id", folder.ID, "user_id", userID)
	}
	return folder, nil
}

// MoveFolder reparents a folder; a nil parent moves it to the root.
// The folder is appended after the destination's siblings.
func (c *Coordinator) MoveFolder(ctx context.Context, userID, folderID string, req *placementSvc.MoveFolderRequest) (*models.Folder, error) {
	if err := validateID("folder_id", folderID); err != nil {
		return nil, err
	}
	parentID, err := normalizeOptionalID("parent_id", req.ParentID)
	if err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == folderID {
		return nil, invalid("cannot move a folder into itself")
	}

	var folder *models.Folder
	moved := false
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := c.folderRepo.LockHierarchy(txCtx, userID); err != nil {
			return err
		}

		current, err := c.guard.ResolveFolder(txCtx, userID, folderID)
		if err != nil {
			return err
		}
		folder = current

		if parentID != nil {
			if _, err := c.guard.ResolveFolder(txCtx, userID, *parentID); err != nil {
				return asNotFound(err, domain.ResourceParentFolder)
			}
			if err := c.checkNotDescendant(txCtx, userID, folderID, *parentID); err != nil {
				return err
			}
		}

		if sameParent(current.ParentID, parentID) {
			return nil
		}

		if err := c.checkSiblingName(txCtx, userID, parentID, current.Name, current.ID); err != nil {
			return err
		}

		order, err := c.ordering.NextOrder(txCtx, userID, parentID)
		if err != nil {
			return err
		}

		current.ParentID = parentID
		current.Order = order
		current.UpdatedAt = c.now()
		moved = true
		return c.folderRepo.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	if moved {
		c.logger.Info("folder moved",
			"id", folder.ID,
			"user_id", userID,
			"parent_id", folder.ParentID,
		)
	}
	return folder, nil
}

// DeleteFolder deletes a folder. Its cards become uncategorized and its child
// folders are promoted to its parent, keeping their names. A promoted name that
// collides at the new level fails the whole delete with a conflict.
func (c *Coordinator) DeleteFolder(ctx context.Context, userID, folderID string) error {
	if err := validateID("folder_id", folderID); err != nil {
		return err
	}

	var detached, promoted int64
	var grandparentID *string
	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := c.folderRepo.LockHierarchy(txCtx, userID); err != nil {
			return err
		}

		folder, err := c.guard.ResolveFolder(txCtx, userID, folderID)
		if err != nil {
			return err
		}
		grandparentID = folder.ParentID

		detached, err = c.cardRepo.DetachFromFolder(txCtx, userID, folderID)
		if err != nil {
			return err
		}

		promoted, err = c.folderRepo.ReparentChildren(txCtx, userID, folderID, grandparentID)
		if err != nil {
			return err
		}

		return c.folderRepo.Delete(txCtx, folderID, userID)
	})
	if err != nil {
		return err
	}

	c.logger.Info("folder deleted",
		"id", folderID,
		"user_id", userID,
		"cards_uncategorized", detached,
		"folders_promoted", promoted,
		"promoted_to", grandparentID,
	)
	return nil
}

// ReorderFolders writes explicit order values. Every id must belong to the user
// or the whole batch is rejected.
func (c *Coordinator) ReorderFolders(ctx context.Context, userID string, req *placementSvc.ReorderFoldersRequest) error {
	if err := validateReorderBatch(req.Folders); err != nil {
		return err
	}
	if len(req.Folders) == 0 {
		return nil
	}

	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, item := range req.Folders {
			if _, err := c.guard.ResolveFolder(txCtx, userID, item.ID); err != nil {
				return err
			}
		}
		return c.ordering.Apply(txCtx, userID, req.Folders)
	})
	if err != nil {
		return err
	}

	c.logger.Info("folders reordered", "user_id", userID, "count", len(req.Folders))
	return nil
}

// checkSiblingName fails with a conflict if another folder already uses name under parentID
func (c *Coordinator) checkSiblingName(ctx context.Context, userID string, parentID *string, name, selfID string) error {
	existing, err := c.folderRepo.FindSiblingByName(ctx, userID, parentID, name)
	if err != nil {
		return fmt.Errorf("check for duplicate names: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return domain.NewFolderNameConflict(existing.ID)
	}
	return nil
}

// checkNotDescendant walks up from newParentID and fails if it passes through folderID
func (c *Coordinator) checkNotDescendant(ctx context.Context, userID, folderID, newParentID string) error {
	visited := make(map[string]bool)
	currentID := newParentID
	for {
		if currentID == folderID {
			return invalid("cannot move a folder into its own descendant")
		}
		if visited[currentID] {
			return fmt.Errorf("folder hierarchy contains a cycle at %s", currentID)
		}
		visited[currentID] = true

		parent, err := c.folderRepo.GetByID(ctx, currentID, userID)
		if err != nil {
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		currentID = *parent.ParentID
	}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
