package placement

import (
	"context"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
)

// CreateCard creates a card, uncategorized unless req.FolderID is set
func (c *Coordinator) CreateCard(ctx context.Context, userID string, req *placementSvc.CreateCardRequest) (*models.Card, error) {
	title, err := normalizeCardTitle(req.Title)
	if err != nil {
		return nil, err
	}
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	folderID, err := normalizeOptionalID("folder_id", req.FolderID)
	if err != nil {
		return nil, err
	}

	var card *models.Card
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if folderID != nil {
			if _, err := c.guard.ResolveFolder(txCtx, userID, *folderID); err != nil {
				return asNotFound(err, domain.ResourceTargetFolder)
			}
		}

		now := c.now()
		card = &models.Card{
			UserID:    userID,
			Title:     title,
			Content:   content,
			FolderID:  folderID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return asNotFound(c.cardRepo.Create(txCtx, card), domain.ResourceTargetFolder)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("card created", "id", card.ID, "user_id", userID, "folder_id", card.FolderID)
	return card, nil
}

// UpdateCard edits the title and/or content of a card
func (c *Coordinator) UpdateCard(ctx context.Context, userID, cardID string, req *placementSvc.UpdateCardRequest) (*models.Card, error) {
	hasContent := contentPresent(req.Content)
	if req.Title == nil && !hasContent {
		return nil, invalid("at least one field must be provided")
	}

	var title string
	if req.Title != nil {
		t, err := normalizeCardTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		title = t
	}
	var content []byte
	if hasContent {
		ct, err := normalizeContent(req.Content)
		if err != nil {
			return nil, err
		}
		content = ct
	}

	var card *models.Card
	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := c.guard.ResolveCard(txCtx, userID, cardID)
		if err != nil {
			return err
		}
		if req.Title != nil {
			current.Title = title
		}
		if content != nil {
			current.Content = content
		}
		current.UpdatedAt = c.now()
		card = current
		return c.cardRepo.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("card updated", "id", card.ID, "user_id", userID)
	return card, nil
}

// DeleteCard deletes a card
func (c *Coordinator) DeleteCard(ctx context.Context, userID, cardID string) error {
	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := c.guard.ResolveCard(txCtx, userID, cardID); err != nil {
			return err
		}
		return c.cardRepo.Delete(txCtx, cardID, userID)
	})
	if err != nil {
		return err
	}

	c.logger.Info("card deleted", "id", cardID, "user_id", userID)
	return nil
}

// MoveCard places a card in folderID; nil makes it uncategorized
func (c *Coordinator) MoveCard(ctx context.Context, userID, cardID string, folderID *string) (*models.Card, error) {
	target, err := normalizeOptionalID("folder_id", folderID)
	if err != nil {
		return nil, err
	}

	var card *models.Card
	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := c.guard.ResolveCard(txCtx, userID, cardID)
		if err != nil {
			return err
		}
		if target != nil {
			if _, err := c.guard.ResolveFolder(txCtx, userID, *target); err != nil {
				return asNotFound(err, domain.ResourceTargetFolder)
			}
		}

		current.FolderID = target
		current.UpdatedAt = c.now()
		card = current
		return c.cardRepo.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("card moved", "id", card.ID, "user_id", userID, "folder_id", card.FolderID)
	return card, nil
}

// ToggleStar flips a card's starred flag
func (c *Coordinator) ToggleStar(ctx context.Context, userID, cardID string) (*models.Card, error) {
	var card *models.Card
	err := c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := c.guard.ResolveCard(txCtx, userID, cardID)
		if err != nil {
			return err
		}
		current.IsStarred = !current.IsStarred
		current.UpdatedAt = c.now()
		card = current
		return c.cardRepo.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("card star toggled", "id", card.ID, "user_id", userID, "starred", card.IsStarred)
	return card, nil
}
