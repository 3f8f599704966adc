package memory

import (
	"context"
	"fmt"
	"sort"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementRepo "cardshelf/internal/domain/repositories/placement"

	"github.com/google/uuid"
)

// CardRepository implements the CardRepository interface over a Store
type CardRepository struct {
	store *Store
}

// NewCardRepository creates a card repository backed by store
func NewCardRepository(store *Store) placementRepo.CardRepository {
	return &CardRepository{store: store}
}

func copyCard(c models.Card) models.Card {
	c.FolderID = copyString(c.FolderID)
	if c.Content != nil {
		c.Content = append([]byte(nil), c.Content...)
	}
	return c
}

// Create inserts a card with a fresh id
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	return r.store.write(ctx, func(st *state) error {
		if !parentExists(st, card.UserID, card.FolderID) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		now := r.store.now()
		card.ID = uuid.NewString()
		if card.CreatedAt.IsZero() {
			card.CreatedAt = now
		}
		if card.UpdatedAt.IsZero() {
			card.UpdatedAt = now
		}
		if len(card.Content) == 0 {
			card.Content = []byte("[]")
		}
		st.cards[card.ID] = copyCard(*card)
		return nil
	})
}

// GetByID retrieves a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id, userID string) (*models.Card, error) {
	var out *models.Card
	err := r.store.read(ctx, func(st *state) error {
		c, ok := st.cards[id]
		if !ok || c.UserID != userID {
			return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		cp := copyCard(c)
		out = &cp
		return nil
	})
	return out, err
}

// GetByIDForUpdate is GetByID; writers are already serialized
func (r *CardRepository) GetByIDForUpdate(ctx context.Context, id, userID string) (*models.Card, error) {
	return r.GetByID(ctx, id, userID)
}

// Update writes title, content, folder, star flag and updated_at
func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.cards[card.ID]
		if !ok || current.UserID != card.UserID {
			return fmt.Errorf("card %s: %w", card.ID, domain.ErrNotFound)
		}
		if !parentExists(st, card.UserID, card.FolderID) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		current.Title = card.Title
		current.Content = card.Content
		current.FolderID = card.FolderID
		current.IsStarred = card.IsStarred
		current.UpdatedAt = card.UpdatedAt
		st.cards[card.ID] = copyCard(current)
		return nil
	})
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id, userID string) error {
	return r.store.write(ctx, func(st *state) error {
		c, ok := st.cards[id]
		if !ok || c.UserID != userID {
			return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		delete(st.cards, id)
		return nil
	})
}

// DetachFromFolder makes every card of folderID uncategorized
func (r *CardRepository) DetachFromFolder(ctx context.Context, userID, folderID string) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		now := r.store.now()
		for id, c := range st.cards {
			if c.UserID != userID || c.FolderID == nil || *c.FolderID != folderID {
				continue
			}
			c.FolderID = nil
			c.UpdatedAt = now
			st.cards[id] = c
			n++
		}
		return nil
	})
	return n, err
}

// List returns the user's cards matching filter, most recently updated first
func (r *CardRepository) List(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error) {
	cards := make([]models.Card, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.cards {
			if c.UserID != userID {
				continue
			}
			switch {
			case filter.FolderID != nil:
				if c.FolderID == nil || *c.FolderID != *filter.FolderID {
					continue
				}
			case filter.Uncategorized:
				if c.FolderID != nil {
					continue
				}
			}
			if filter.StarredOnly && !c.IsStarred {
				continue
			}
			cards = append(cards, copyCard(c))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].UpdatedAt.Equal(cards[j].UpdatedAt) {
			return cards[i].UpdatedAt.After(cards[j].UpdatedAt)
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}
