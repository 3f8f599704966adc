package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	models "cardshelf/internal/domain/models/placement"
	"cardshelf/internal/repository"
	"cardshelf/internal/service/placement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("user_id: u\nfolders:\n  - nam: typo\n"))
	assert.Error(t, err)
}

func TestApply_Sample(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f, err := os.Open("testdata/sample.yaml")
	require.NoError(t, err)
	defer f.Close()

	fixture, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, "demo-user", fixture.UserID)

	store := repository.NewMemoryStore(logger)
	svc := placement.NewPlacementService(store.Folders, store.Cards, store.TxManager, logger)

	summary, err := Apply(ctx, svc, fixture.UserID, fixture, logger)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Folders: 5, Cards: 3}, summary)

	roots, err := svc.ListFolderTree(ctx, "demo-user")
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Work", roots[0].Name)
	assert.Equal(t, "Personal", roots[1].Name)
	require.Len(t, roots[0].Children, 2)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "Work", roots[1].Children[0].Name)

	starred, err := svc.ListCards(ctx, "demo-user", models.CardFilter{StarredOnly: true})
	require.NoError(t, err)
	require.Len(t, starred, 1)
	assert.Equal(t, "Roadmap", starred[0].Title)
	assert.JSONEq(t, `[{"type":"paragraph","text":"Ship the tree view"}]`, string(starred[0].Content))

	loose, err := svc.ListCards(ctx, "demo-user", models.CardFilter{Uncategorized: true})
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, "Inbox note", loose[0].Title)
}

func TestApply_RequiresUser(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore(logger)
	svc := placement.NewPlacementService(store.Folders, store.Cards, store.TxManager, logger)

	_, err := Apply(context.Background(), svc, "", &Fixture{}, logger)
	assert.Error(t, err)
}
