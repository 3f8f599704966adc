// Package memory is an in-process backing store with the same repository and
// transaction contracts as the Postgres store. Writers are serialized; each
// transaction works on a private copy of the state that is published on commit.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	"cardshelf/internal/domain/repositories"
)

type state struct {
	folders map[string]models.Folder
	cards   map[string]models.Card
}

func newState() *state {
	return &state{
		folders: make(map[string]models.Folder),
		cards:   make(map[string]models.Card),
	}
}

func (s *state) clone() *state {
	c := &state{
		folders: make(map[string]models.Folder, len(s.folders)),
		cards:   make(map[string]models.Card, len(s.cards)),
	}
	for id, f := range s.folders {
		c.folders[id] = f
	}
	for id, card := range s.cards {
		c.cards[id] = card
	}
	return c
}

type siblingKey struct {
	userID   string
	parentID string
	isRoot   bool
	name     string
}

func keyOf(f models.Folder) siblingKey {
	k := siblingKey{userID: f.UserID, name: f.Name, isRoot: f.ParentID == nil}
	if f.ParentID != nil {
		k.parentID = *f.ParentID
	}
	return k
}

// checkIntegrity verifies the rules Postgres enforces with constraints
func (s *state) checkIntegrity() error {
	seen := make(map[siblingKey]string, len(s.folders))
	for id, f := range s.folders {
		k := keyOf(f)
		if _, dup := seen[k]; dup {
			return domain.NewFolderNameConflict("")
		}
		seen[k] = id

		if f.ParentID != nil {
			parent, ok := s.folders[*f.ParentID]
			if !ok || parent.UserID != f.UserID {
				return fmt.Errorf("folder %s references missing parent %s", id, *f.ParentID)
			}
		}
	}
	for id, card := range s.cards {
		if card.FolderID != nil {
			folder, ok := s.folders[*card.FolderID]
			if !ok || folder.UserID != card.UserID {
				return fmt.Errorf("card %s references missing folder %s", id, *card.FolderID)
			}
		}
	}
	return nil
}

type txKey struct{ store *Store }

type tx struct {
	state *state
}

// Store holds the committed state
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	state   *state
	now     func() time.Time
	logger  *slog.Logger
}

// NewStore creates an empty store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		state:  newState(),
		now:    time.Now,
		logger: logger,
	}
}

func (s *Store) txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{store: s}).(*tx)
	return t
}

// ExecTx runs fn against a private copy of the state and publishes it on success
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if s.txFromContext(ctx) != nil {
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.RLock()
	t := &tx{state: s.state.clone()}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{store: s}, t)); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if err := t.state.checkIntegrity(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.mu.Lock()
	s.state = t.state
	s.mu.Unlock()
	return nil
}

// TransactionManager returns the store as a repositories.TransactionManager
func (s *Store) TransactionManager() repositories.TransactionManager {
	return s
}

// read runs fn against the transaction's state, or the committed state under a read lock
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t := s.txFromContext(ctx); t != nil {
		return fn(t.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write runs fn inside the caller's transaction, or in a transaction of its own
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if t := s.txFromContext(ctx); t != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(t.state)
	}
	return s.ExecTx(ctx, func(ctx context.Context) error {
		return fn(s.txFromContext(ctx).state)
	})
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func lessFolder(a, b models.Folder) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
		return la < lb
	}
	return a.ID < b.ID
}
