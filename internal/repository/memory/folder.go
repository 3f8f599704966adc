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

// FolderRepository implements the FolderRepository interface over a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) placementRepo.FolderRepository {
	return &FolderRepository{store: store}
}

func copyFolder(f models.Folder) models.Folder {
	f.ParentID = copyString(f.ParentID)
	return f
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func findSibling(st *state, userID string, parentID *string, name, excludeID string) (models.Folder, bool) {
	for id, f := range st.folders {
		if id != excludeID && f.UserID == userID && f.Name == name && sameParent(f.ParentID, parentID) {
			return f, true
		}
	}
	return models.Folder{}, false
}

func parentExists(st *state, userID string, parentID *string) bool {
	if parentID == nil {
		return true
	}
	p, ok := st.folders[*parentID]
	return ok && p.UserID == userID
}

// Create inserts a folder with a fresh id
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	return r.store.write(ctx, func(st *state) error {
		if !parentExists(st, folder.UserID, folder.ParentID) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		if existing, dup := findSibling(st, folder.UserID, folder.ParentID, folder.Name, ""); dup {
			return domain.NewFolderNameConflict(existing.ID)
		}

		now := r.store.now()
		folder.ID = uuid.NewString()
		if folder.CreatedAt.IsZero() {
			folder.CreatedAt = now
		}
		if folder.UpdatedAt.IsZero() {
			folder.UpdatedAt = now
		}
		folder.CardCount = 0
		st.folders[folder.ID] = copyFolder(*folder)
		return nil
	})
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	var out *models.Folder
	err := r.store.read(ctx, func(st *state) error {
		f, ok := st.folders[id]
		if !ok || f.UserID != userID {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		c := copyFolder(f)
		out = &c
		return nil
	})
	return out, err
}

// GetByIDForUpdate is GetByID; writers are already serialized
func (r *FolderRepository) GetByIDForUpdate(ctx context.Context, id, userID string) (*models.Folder, error) {
	return r.GetByID(ctx, id, userID)
}

// FindSiblingByName returns the folder named name under parentID, or nil
func (r *FolderRepository) FindSiblingByName(ctx context.Context, userID string, parentID *string, name string) (*models.Folder, error) {
	var out *models.Folder
	err := r.store.read(ctx, func(st *state) error {
		if f, ok := findSibling(st, userID, parentID, name, ""); ok {
			c := copyFolder(f)
			out = &c
		}
		return nil
	})
	return out, err
}

// MaxSiblingOrder returns the highest order under parentID
func (r *FolderRepository) MaxSiblingOrder(ctx context.Context, userID string, parentID *string) (int, bool, error) {
	max, found := 0, false
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.folders {
			if f.UserID != userID || !sameParent(f.ParentID, parentID) {
				continue
			}
			if !found || f.Order > max {
				max, found = f.Order, true
			}
		}
		return nil
	})
	return max, found, err
}

// Update writes name, parent, order and updated_at
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.folders[folder.ID]
		if !ok || current.UserID != folder.UserID {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		if !parentExists(st, folder.UserID, folder.ParentID) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		if existing, dup := findSibling(st, folder.UserID, folder.ParentID, folder.Name, folder.ID); dup {
			return domain.NewFolderNameConflict(existing.ID)
		}

		current.ParentID = copyString(folder.ParentID)
		current.Name = folder.Name
		current.Order = folder.Order
		current.UpdatedAt = folder.UpdatedAt
		st.folders[folder.ID] = current
		return nil
	})
}

// Delete removes a folder row that nothing references any more
func (r *FolderRepository) Delete(ctx context.Context, id, userID string) error {
	return r.store.write(ctx, func(st *state) error {
		f, ok := st.folders[id]
		if !ok || f.UserID != userID {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		for _, child := range st.folders {
			if child.ParentID != nil && *child.ParentID == id {
				return fmt.Errorf("folder %s still referenced: %w", id, domain.ErrConflict)
			}
		}
		for _, card := range st.cards {
			if card.FolderID != nil && *card.FolderID == id {
				return fmt.Errorf("folder %s still referenced: %w", id, domain.ErrConflict)
			}
		}
		delete(st.folders, id)
		return nil
	})
}

// ReparentChildren moves every direct child of folderID under newParentID.
// Name uniqueness is checked when the transaction commits.
func (r *FolderRepository) ReparentChildren(ctx context.Context, userID, folderID string, newParentID *string) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		if !parentExists(st, userID, newParentID) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		now := r.store.now()
		for id, f := range st.folders {
			if f.UserID != userID || f.ParentID == nil || *f.ParentID != folderID {
				continue
			}
			f.ParentID = copyString(newParentID)
			f.UpdatedAt = now
			st.folders[id] = f
			n++
		}
		return nil
	})
	return n, err
}

// UpdateOrders writes every listed order, or none if any id is unknown
func (r *FolderRepository) UpdateOrders(ctx context.Context, userID string, items []models.FolderOrder) error {
	if len(items) == 0 {
		return nil
	}
	return r.store.write(ctx, func(st *state) error {
		for _, item := range items {
			if f, ok := st.folders[item.ID]; !ok || f.UserID != userID {
				return fmt.Errorf("folder %s: %w", item.ID, domain.ErrNotFound)
			}
		}
		now := r.store.now()
		for _, item := range items {
			f := st.folders[item.ID]
			f.Order = item.Order
			f.UpdatedAt = now
			st.folders[item.ID] = f
		}
		return nil
	})
}

// ListByUser returns the user's folders with card counts
func (r *FolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	folders := make([]models.Folder, 0)
	err := r.store.read(ctx, func(st *state) error {
		counts := make(map[string]int)
		for _, card := range st.cards {
			if card.UserID == userID && card.FolderID != nil {
				counts[*card.FolderID]++
			}
		}
		for id, f := range st.folders {
			if f.UserID != userID {
				continue
			}
			c := copyFolder(f)
			c.CardCount = counts[id]
			folders = append(folders, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(folders, func(i, j int) bool { return lessFolder(folders[i], folders[j]) })
	return folders, nil
}

// LockHierarchy is a no-op: transactions never overlap
func (r *FolderRepository) LockHierarchy(ctx context.Context, userID string) error {
	return ctx.Err()
}
