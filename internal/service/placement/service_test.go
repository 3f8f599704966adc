package placement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
	"cardshelf/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

func newTestService(t *testing.T) placementSvc.PlacementService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore(logger)
	return NewPlacementService(
		memory.NewFolderRepository(store),
		memory.NewCardRepository(store),
		store.TransactionManager(),
		logger,
	)
}

func mustFolder(t *testing.T, svc placementSvc.PlacementService, userID, name string, parentID *string) *models.Folder {
	t.Helper()
	f, err := svc.CreateFolder(context.Background(), userID, &placementSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return f
}

func mustCard(t *testing.T, svc placementSvc.PlacementService, userID, title string, folderID *string) *models.Card {
	t.Helper()
	c, err := svc.CreateCard(context.Background(), userID, &placementSvc.CreateCardRequest{Title: title, FolderID: folderID})
	require.NoError(t, err)
	return c
}

func treeNames(t *testing.T, svc placementSvc.PlacementService, userID string) []string {
	t.Helper()
	roots, err := svc.ListFolderTree(context.Background(), userID)
	require.NoError(t, err)
	var out []string
	var walk func(prefix string, nodes []*models.FolderTreeNode)
	walk = func(prefix string, nodes []*models.FolderTreeNode) {
		for _, n := range nodes {
			out = append(out, prefix+n.Name)
			walk(prefix+n.Name+"/", n.Children)
		}
	}
	walk("", roots)
	return out
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	work := mustFolder(t, svc, alice, "  Work  ", nil)
	assert.Equal(t, "Work", work.Name)
	assert.Nil(t, work.ParentID)
	assert.Equal(t, 0, work.Order)
	assert.NotEmpty(t, work.ID)

	home := mustFolder(t, svc, alice, "Home", nil)
	assert.Equal(t, 1, home.Order, "appended after existing siblings")

	child := mustFolder(t, svc, alice, "Reports", &work.ID)
	assert.Equal(t, 0, child.Order, "first child starts at zero")
	require.NotNil(t, child.ParentID)
	assert.Equal(t, work.ID, *child.ParentID)

	// Same name under a different parent is fine; another user's roots are independent
	mustFolder(t, svc, alice, "Work", &work.ID)
	mustFolder(t, svc, bob, "Work", nil)

	tests := []struct {
		name     string
		req      placementSvc.CreateFolderRequest
		userID   string
		wantKind error
	}{
		{"empty name", placementSvc.CreateFolderRequest{Name: "   "}, alice, domain.ErrValidation},
		{"name too long", placementSvc.CreateFolderRequest{Name: strings.Repeat("x", 256)}, alice, domain.ErrValidation},
		{"malformed parent", placementSvc.CreateFolderRequest{Name: "x", ParentID: ptr("nope")}, alice, domain.ErrValidation},
		{"unknown parent", placementSvc.CreateFolderRequest{Name: "x", ParentID: ptr(uuid.NewString())}, alice, domain.ErrNotFound},
		{"foreign parent", placementSvc.CreateFolderRequest{Name: "x", ParentID: &work.ID}, bob, domain.ErrNotFound},
		{"duplicate root", placementSvc.CreateFolderRequest{Name: "Work"}, alice, domain.ErrConflict},
		{"duplicate after trim", placementSvc.CreateFolderRequest{Name: " Reports ", ParentID: &work.ID}, alice, domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.CreateFolder(ctx, tt.userID, &req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}

	// 255 characters, multi-byte, is accepted
	_, err := svc.CreateFolder(ctx, alice, &placementSvc.CreateFolderRequest{Name: strings.Repeat("é", 255)})
	assert.NoError(t, err)

	// Names are labels, not paths
	slashed, err := svc.CreateFolder(ctx, alice, &placementSvc.CreateFolderRequest{Name: "A/B"})
	require.NoError(t, err)
	assert.Equal(t, "A/B", slashed.Name)
}

func TestCreateFolder_ConflictCarriesExistingID(t *testing.T) {
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)

	_, err := svc.CreateFolder(context.Background(), alice, &placementSvc.CreateFolderRequest{Name: "Work"})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "folder", conflict.ResourceType)
	assert.Equal(t, work.ID, conflict.ResourceID)
	assert.Equal(t, "a folder with this name already exists at this level", conflict.Error())
}

func TestRenameFolder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)
	mustFolder(t, svc, alice, "Home", nil)

	renamed, err := svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: " Office "})
	require.NoError(t, err)
	assert.Equal(t, "Office", renamed.Name)

	_, err = svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: "Home"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.RenameFolder(ctx, bob, work.ID, &placementSvc.RenameFolderRequest{Name: "Mine"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Case change is a real rename
	renamed, err = svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: "office"})
	require.NoError(t, err)
	assert.Equal(t, "office", renamed.Name)
}

func TestRenameFolder_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)

	first, err := svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: "Work"})
	require.NoError(t, err)
	second, err := svc.RenameFolder(ctx, alice, work.ID, &placementSvc.RenameFolderRequest{Name: "  Work "})
	require.NoError(t, err)

	assert.Equal(t, work.Name, first.Name)
	assert.Equal(t, first, second)
	assert.True(t, work.UpdatedAt.Equal(second.UpdatedAt), "no-op rename must not touch updated_at")
}

// Scenario A: deleting a folder uncategorizes its cards and promotes its children
func TestDeleteFolder_PromotesChildrenAndDetachesCards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	work := mustFolder(t, svc, alice, "Work", nil)
	projects := mustFolder(t, svc, alice, "Projects", &work.ID)
	alpha := mustFolder(t, svc, alice, "Alpha", &projects.ID)
	card := mustCard(t, svc, alice, "Plan", &projects.ID)
	other := mustCard(t, svc, alice, "Elsewhere", &work.ID)

	require.NoError(t, svc.DeleteFolder(ctx, alice, projects.ID))

	_, err := svc.GetFolder(ctx, alice, projects.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	promoted, err := svc.GetFolder(ctx, alice, alpha.ID)
	require.NoError(t, err)
	require.NotNil(t, promoted.ParentID)
	assert.Equal(t, work.ID, *promoted.ParentID)
	assert.Equal(t, "Alpha", promoted.Name)

	got, err := svc.GetCard(ctx, alice, card.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FolderID)

	untouched, err := svc.GetCard(ctx, alice, other.ID)
	require.NoError(t, err)
	require.NotNil(t, untouched.FolderID)
	assert.Equal(t, work.ID, *untouched.FolderID)

	assert.Equal(t, []string{"Work", "Work/Alpha"}, treeNames(t, svc, alice))
}

// Scenario B: deleting a root promotes its children to root
func TestDeleteFolder_RootChildrenBecomeRoots(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	work := mustFolder(t, svc, alice, "Work", nil)
	mustFolder(t, svc, alice, "Reports", &work.ID)

	require.NoError(t, svc.DeleteFolder(ctx, alice, work.ID))
	assert.Equal(t, []string{"Reports"}, treeNames(t, svc, alice))
}

// Scenario C: a promoted child may share its deleted parent's name
func TestDeleteFolder_ChildNamedLikeParent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	work := mustFolder(t, svc, alice, "Work", nil)
	inner := mustFolder(t, svc, alice, "Work", &work.ID)

	require.NoError(t, svc.DeleteFolder(ctx, alice, work.ID))

	got, err := svc.GetFolder(ctx, alice, inner.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	assert.Equal(t, []string{"Work"}, treeNames(t, svc, alice))
}

// Scenario D: a promotion that collides at the new level aborts the whole delete
func TestDeleteFolder_CollisionRollsBack(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	mustFolder(t, svc, alice, "Reports", nil)
	work := mustFolder(t, svc, alice, "Work", nil)
	mustFolder(t, svc, alice, "Reports", &work.ID)
	card := mustCard(t, svc, alice, "Plan", &work.ID)
	before := treeNames(t, svc, alice)

	err := svc.DeleteFolder(ctx, alice, work.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, before, treeNames(t, svc, alice))
	got, err := svc.GetCard(ctx, alice, card.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID, "card detach must roll back")
	assert.Equal(t, work.ID, *got.FolderID)
}

func TestDeleteFolder_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)

	assert.ErrorIs(t, svc.DeleteFolder(ctx, bob, work.ID), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteFolder(ctx, alice, uuid.NewString()), domain.ErrNotFound)

	require.NoError(t, svc.DeleteFolder(ctx, alice, work.ID))
	assert.ErrorIs(t, svc.DeleteFolder(ctx, alice, work.ID), domain.ErrNotFound, "a deleted id never resolves again")
}

func TestCreateDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)
	mustFolder(t, svc, alice, "Reports", &work.ID)
	before := treeNames(t, svc, alice)

	tmp := mustFolder(t, svc, alice, "Scratch", &work.ID)
	require.NoError(t, svc.DeleteFolder(ctx, alice, tmp.ID))

	assert.Equal(t, before, treeNames(t, svc, alice))
}

func TestMoveFolder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	work := mustFolder(t, svc, alice, "Work", nil)
	reports := mustFolder(t, svc, alice, "Reports", &work.ID)
	q3 := mustFolder(t, svc, alice, "Q3", &reports.ID)
	home := mustFolder(t, svc, alice, "Home", nil)
	mustFolder(t, svc, alice, "Q3", &home.ID)

	moved, err := svc.MoveFolder(ctx, alice, reports.ID, &placementSvc.MoveFolderRequest{ParentID: &home.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, home.ID, *moved.ParentID)
	assert.Equal(t, 1, moved.Order, "appended after destination siblings")

	_, err = svc.MoveFolder(ctx, alice, reports.ID, &placementSvc.MoveFolderRequest{ParentID: &reports.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.MoveFolder(ctx, alice, home.ID, &placementSvc.MoveFolderRequest{ParentID: &q3.ID})
	assert.ErrorIs(t, err, domain.ErrValidation, "cannot move into a descendant")

	_, err = svc.MoveFolder(ctx, alice, q3.ID, &placementSvc.MoveFolderRequest{ParentID: &home.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.MoveFolder(ctx, bob, q3.ID, &placementSvc.MoveFolderRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	root, err := svc.MoveFolder(ctx, alice, q3.ID, &placementSvc.MoveFolderRequest{ParentID: nil})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	assert.Equal(t, []string{"Work", "Home", "Home/Q3", "Home/Reports", "Q3"}, treeNames(t, svc, alice))
}

func TestReorderFolders(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	a := mustFolder(t, svc, alice, "A", nil)
	b := mustFolder(t, svc, alice, "B", nil)
	c := mustFolder(t, svc, alice, "C", nil)
	foreign := mustFolder(t, svc, bob, "Z", nil)

	err := svc.ReorderFolders(ctx, alice, &placementSvc.ReorderFoldersRequest{Folders: []models.FolderOrder{
		{ID: c.ID, Order: 0}, {ID: a.ID, Order: 1}, {ID: b.ID, Order: 2},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, treeNames(t, svc, alice))

	tests := []struct {
		name  string
		items []models.FolderOrder
		want  error
	}{
		{"duplicate id", []models.FolderOrder{{ID: a.ID, Order: 0}, {ID: a.ID, Order: 1}}, domain.ErrValidation},
		{"negative order", []models.FolderOrder{{ID: a.ID, Order: -1}}, domain.ErrValidation},
		{"malformed id", []models.FolderOrder{{ID: "x", Order: 0}}, domain.ErrValidation},
		{"foreign id", []models.FolderOrder{{ID: a.ID, Order: 9}, {ID: foreign.ID, Order: 0}}, domain.ErrNotFound},
		{"unknown id", []models.FolderOrder{{ID: a.ID, Order: 9}, {ID: uuid.NewString(), Order: 0}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ReorderFolders(ctx, alice, &placementSvc.ReorderFoldersRequest{Folders: tt.items})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, []string{"C", "A", "B"}, treeNames(t, svc, alice), "batch must be all or nothing")
		})
	}

	assert.NoError(t, svc.ReorderFolders(ctx, alice, &placementSvc.ReorderFoldersRequest{}))
}

func TestCards(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)

	card := mustCard(t, svc, alice, " Plan ", nil)
	assert.Equal(t, "Plan", card.Title)
	assert.JSONEq(t, `[]`, string(card.Content))
	assert.Nil(t, card.FolderID)
	assert.False(t, card.IsStarred)

	moved, err := svc.MoveCard(ctx, alice, card.ID, &work.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, work.ID, *moved.FolderID)

	starred, err := svc.ToggleStar(ctx, alice, card.ID)
	require.NoError(t, err)
	assert.True(t, starred.IsStarred)

	title := "Plan v2"
	updated, err := svc.UpdateCard(ctx, alice, card.ID, &placementSvc.UpdateCardRequest{
		Title:   &title,
		Content: json.RawMessage(`[{"type":"p"}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", updated.Title)
	assert.JSONEq(t, `[{"type":"p"}]`, string(updated.Content))
	assert.True(t, updated.IsStarred)

	listed, err := svc.ListCards(ctx, alice, models.CardFilter{FolderID: &work.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	listed, err = svc.ListCards(ctx, alice, models.CardFilter{Uncategorized: true})
	require.NoError(t, err)
	assert.Empty(t, listed)

	folders, err := svc.ListFolders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, 1, folders[0].CardCount)

	uncategorized, err := svc.MoveCard(ctx, alice, card.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, uncategorized.FolderID)

	// Errors
	_, err = svc.MoveCard(ctx, alice, card.ID, ptr(uuid.NewString()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.MoveCard(ctx, bob, card.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ToggleStar(ctx, bob, card.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateCard(ctx, alice, card.ID, &placementSvc.UpdateCardRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateCard(ctx, alice, card.ID, &placementSvc.UpdateCardRequest{Content: json.RawMessage(`{bad`)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ListCards(ctx, alice, models.CardFilter{FolderID: &work.ID, Uncategorized: true})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.DeleteCard(ctx, alice, card.ID))
	_, err = svc.GetCard(ctx, alice, card.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcurrentCreate_OneWins(t *testing.T) {
	svc := newTestService(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateFolder(context.Background(), alice, &placementSvc.CreateFolderRequest{Name: "Inbox"})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, []string{"Inbox"}, treeNames(t, svc, alice))
}

func TestConcurrentDelete_LoserSeesNotFound(t *testing.T) {
	svc := newTestService(t)
	work := mustFolder(t, svc, alice, "Work", nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.DeleteFolder(context.Background(), alice, work.ID)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestCancelledContextWritesNothing(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateFolder(ctx, alice, &placementSvc.CreateFolderRequest{Name: "Work"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, treeNames(t, svc, alice))
}

func TestUpdateCard_NullContentKeepsBody(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	card, err := svc.CreateCard(ctx, alice, &placementSvc.CreateCardRequest{
		Title:   "Notes",
		Content: json.RawMessage(`[{"type":"p","text":"keep me"}]`),
	})
	require.NoError(t, err)

	title := "Notes v2"
	updated, err := svc.UpdateCard(ctx, alice, card.ID, &placementSvc.UpdateCardRequest{
		Title:   &title,
		Content: json.RawMessage(`null`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Notes v2", updated.Title)
	assert.JSONEq(t, `[{"type":"p","text":"keep me"}]`, string(updated.Content))

	// null alone is no change at all
	_, err = svc.UpdateCard(ctx, alice, card.ID, &placementSvc.UpdateCardRequest{Content: json.RawMessage(` null `)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNotFoundNamesTheMissingEntity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	bobs := mustFolder(t, svc, bob, "Private", nil)
	card := mustCard(t, svc, alice, "Plan", nil)
	missing := uuid.NewString()

	tests := []struct {
		name    string
		call    func() error
		message string
	}{
		{"create under missing parent", func() error {
			_, err := svc.CreateFolder(ctx, alice, &placementSvc.CreateFolderRequest{Name: "x", ParentID: &missing})
			return err
		}, "parent folder not found"},
		{"create under another user's folder", func() error {
			_, err := svc.CreateFolder(ctx, alice, &placementSvc.CreateFolderRequest{Name: "x", ParentID: &bobs.ID})
			return err
		}, "parent folder not found"},
		{"rename missing folder", func() error {
			_, err := svc.RenameFolder(ctx, alice, missing, &placementSvc.RenameFolderRequest{Name: "x"})
			return err
		}, "folder not found"},
		{"get another user's folder", func() error {
			_, err := svc.GetFolder(ctx, alice, bobs.ID)
			return err
		}, "folder not found"},
		{"move card to missing folder", func() error {
			_, err := svc.MoveCard(ctx, alice, card.ID, &missing)
			return err
		}, "target folder not found"},
		{"move missing card", func() error {
			_, err := svc.MoveCard(ctx, alice, missing, nil)
			return err
		}, "card not found"},
		{"get missing card", func() error {
			_, err := svc.GetCard(ctx, alice, missing)
			return err
		}, "card not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var notFound *domain.NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, tt.message, notFound.Message)
		})
	}
}
