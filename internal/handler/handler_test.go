package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
	"cardshelf/internal/httputil"
	"cardshelf/internal/repository"
	"cardshelf/internal/service/placement"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService implements PlacementService with overridable functions
type fakeService struct {
	createFolder   func(ctx context.Context, userID string, req *placementSvc.CreateFolderRequest) (*models.Folder, error)
	getFolder      func(ctx context.Context, userID, folderID string) (*models.Folder, error)
	renameFolder   func(ctx context.Context, userID, folderID string, req *placementSvc.RenameFolderRequest) (*models.Folder, error)
	moveFolder     func(ctx context.Context, userID, folderID string, req *placementSvc.MoveFolderRequest) (*models.Folder, error)
	deleteFolder   func(ctx context.Context, userID, folderID string) error
	reorderFolders func(ctx context.Context, userID string, req *placementSvc.ReorderFoldersRequest) error
	listFolders    func(ctx context.Context, userID string) ([]models.Folder, error)
	listFolderTree func(ctx context.Context, userID string) ([]*models.FolderTreeNode, error)
	listCards      func(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error)
	moveCard       func(ctx context.Context, userID, cardID string, folderID *string) (*models.Card, error)
}

var errNotImplemented = errors.New("not implemented")

func (f *fakeService) CreateFolder(ctx context.Context, userID string, req *placementSvc.CreateFolderRequest) (*models.Folder, error) {
	return f.createFolder(ctx, userID, req)
}
func (f *fakeService) GetFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	return f.getFolder(ctx, userID, folderID)
}
func (f *fakeService) RenameFolder(ctx context.Context, userID, folderID string, req *placementSvc.RenameFolderRequest) (*models.Folder, error) {
	return f.renameFolder(ctx, userID, folderID, req)
}
func (f *fakeService) MoveFolder(ctx context.Context, userID, folderID string, req *placementSvc.MoveFolderRequest) (*models.Folder, error) {
	return f.moveFolder(ctx, userID, folderID, req)
}
func (f *fakeService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	return f.deleteFolder(ctx, userID, folderID)
}
func (f *fakeService) ReorderFolders(ctx context.Context, userID string, req *placementSvc.ReorderFoldersRequest) error {
	return f.reorderFolders(ctx, userID, req)
}
func (f *fakeService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	return f.listFolders(ctx, userID)
}
func (f *fakeService) ListFolderTree(ctx context.Context, userID string) ([]*models.FolderTreeNode, error) {
	return f.listFolderTree(ctx, userID)
}
func (f *fakeService) CreateCard(ctx context.Context, userID string, req *placementSvc.CreateCardRequest) (*models.Card, error) {
	return nil, errNotImplemented
}
func (f *fakeService) GetCard(ctx context.Context, userID, cardID string) (*models.Card, error) {
	return nil, errNotImplemented
}
func (f *fakeService) ListCards(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error) {
	return f.listCards(ctx, userID, filter)
}
func (f *fakeService) UpdateCard(ctx context.Context, userID, cardID string, req *placementSvc.UpdateCardRequest) (*models.Card, error) {
	return nil, errNotImplemented
}
func (f *fakeService) DeleteCard(ctx context.Context, userID, cardID string) error {
	return errNotImplemented
}
func (f *fakeService) MoveCard(ctx context.Context, userID, cardID string, folderID *string) (*models.Card, error) {
	return f.moveCard(ctx, userID, cardID, folderID)
}
func (f *fakeService) ToggleStar(ctx context.Context, userID, cardID string) (*models.Card, error) {
	return nil, errNotImplemented
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestMux(svc placementSvc.PlacementService, pinger Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	RegisterRoutes(mux,
		NewFolderHandler(svc, logger),
		NewCardHandler(svc, logger),
		NewHealthHandler(pinger, logger),
	)
	// Stand-in for the auth middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, httputil.WithUserID(r, "user-1"))
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestCreateFolder(t *testing.T) {
	var gotUser string
	var gotReq placementSvc.CreateFolderRequest
	svc := &fakeService{
		createFolder: func(ctx context.Context, userID string, req *placementSvc.CreateFolderRequest) (*models.Folder, error) {
			gotUser, gotReq = userID, *req
			return &models.Folder{ID: "f1", UserID: userID, Name: req.Name, ParentID: req.ParentID}, nil
		},
	}
	h := newTestMux(svc, nil)

	rec := do(t, h, http.MethodPost, "/api/folders", `{"name":"Work","parent_id":"p1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "Work", gotReq.Name)
	require.NotNil(t, gotReq.ParentID)
	assert.Equal(t, "p1", *gotReq.ParentID)

	var body models.Folder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "f1", body.ID)
}

func TestCreateFolder_BadBodies(t *testing.T) {
	svc := &fakeService{}
	h := newTestMux(svc, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"name":`},
		{"unknown field", `{"nme":"Work"}`},
		{"trailing data", `{"name":"a"} {"name":"b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/folders", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"validation", &domain.ValidationError{Message: "name: cannot be blank"}, http.StatusBadRequest, "name: cannot be blank"},
		{"bare not found", errors.Join(errors.New("folder x"), domain.ErrNotFound), http.StatusNotFound, "resource not found"},
		{"named not found", fmt.Errorf("rename: %w", domain.NewNotFound(domain.ResourceFolder)), http.StatusNotFound, "folder not found"},
		{"conflict", domain.NewFolderNameConflict("f9"), http.StatusConflict, "a folder with this name already exists at this level"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				renameFolder: func(context.Context, string, string, *placementSvc.RenameFolderRequest) (*models.Folder, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newTestMux(svc, nil), http.MethodPatch, "/api/folders/f1", `{"name":"x"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantDetail, problem["detail"])
			if tt.wantStatus == http.StatusConflict {
				assert.Equal(t, "folder", problem["resource_type"])
				assert.Equal(t, "f9", problem["resource_id"])
			}
		})
	}
}

func TestMoveFolder_ParentRequired(t *testing.T) {
	var got *placementSvc.MoveFolderRequest
	svc := &fakeService{
		moveFolder: func(ctx context.Context, userID, folderID string, req *placementSvc.MoveFolderRequest) (*models.Folder, error) {
			got = req
			return &models.Folder{ID: folderID}, nil
		},
	}
	h := newTestMux(svc, nil)

	rec := do(t, h, http.MethodPut, "/api/folders/f1/parent", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, got)

	rec = do(t, h, http.MethodPut, "/api/folders/f1/parent", `{"parent_id":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Nil(t, got.ParentID)
}

func TestMoveCard(t *testing.T) {
	var gotCard string
	var gotFolder *string
	called := false
	svc := &fakeService{
		moveCard: func(ctx context.Context, userID, cardID string, folderID *string) (*models.Card, error) {
			called = true
			gotCard, gotFolder = cardID, folderID
			return &models.Card{ID: cardID, FolderID: folderID}, nil
		},
	}
	h := newTestMux(svc, nil)

	rec := do(t, h, http.MethodPut, "/api/cards/c1/move", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "folder_id must be present")
	assert.False(t, called)

	rec = do(t, h, http.MethodPut, "/api/cards/c1/move", `{"folder_id":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", gotCard)
	assert.Nil(t, gotFolder)

	rec = do(t, h, http.MethodPut, "/api/cards/c1/move", `{"folder_id":"f2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotFolder)
	assert.Equal(t, "f2", *gotFolder)
}

func TestDeleteAndReorder_NoContent(t *testing.T) {
	var deleted string
	var reordered []models.FolderOrder
	svc := &fakeService{
		deleteFolder: func(ctx context.Context, userID, folderID string) error {
			deleted = folderID
			return nil
		},
		reorderFolders: func(ctx context.Context, userID string, req *placementSvc.ReorderFoldersRequest) error {
			reordered = req.Folders
			return nil
		},
	}
	h := newTestMux(svc, nil)

	rec := do(t, h, http.MethodDelete, "/api/folders/f1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "f1", deleted)

	rec = do(t, h, http.MethodPost, "/api/folders/reorder", `{"folders":[{"id":"a","order":1},{"id":"b","order":0}]}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []models.FolderOrder{{ID: "a", Order: 1}, {ID: "b", Order: 0}}, reordered)
}

func TestGetTree(t *testing.T) {
	svc := &fakeService{
		listFolderTree: func(ctx context.Context, userID string) ([]*models.FolderTreeNode, error) {
			return []*models.FolderTreeNode{{
				ID: "a", Name: "Work", CardCount: 2,
				Children: []*models.FolderTreeNode{{ID: "b", Name: "Reports", ParentID: strPtr("a"), Children: []*models.FolderTreeNode{}}},
			}}, nil
		},
		getFolder: func(ctx context.Context, userID, folderID string) (*models.Folder, error) {
			t.Fatalf("tree route must not resolve to GetFolder (id %q)", folderID)
			return nil, nil
		},
	}

	rec := do(t, newTestMux(svc, nil), http.MethodGet, "/api/folders/tree", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Folders []struct {
			ID        string `json:"id"`
			CardCount int    `json:"card_count"`
			Children  []struct {
				ID       string   `json:"id"`
				Children []string `json:"children"`
			} `json:"children"`
		} `json:"folders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Folders, 1)
	assert.Equal(t, 2, body.Folders[0].CardCount)
	require.Len(t, body.Folders[0].Children, 1)
	assert.Equal(t, "b", body.Folders[0].Children[0].ID)
	assert.NotNil(t, body.Folders[0].Children[0].Children)
}

func TestListCards_QueryParsing(t *testing.T) {
	var got models.CardFilter
	svc := &fakeService{
		listCards: func(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error) {
			got = filter
			return []models.Card{}, nil
		},
	}
	h := newTestMux(svc, nil)

	rec := do(t, h, http.MethodGet, "/api/cards?folder_id=f1&starred=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, "f1", *got.FolderID)
	assert.True(t, got.StarredOnly)
	assert.False(t, got.Uncategorized)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/cards?uncategorized=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestMux(&fakeService{}, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestMux(&fakeService{}, fakePinger{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestMux(&fakeService{}, fakePinger{err: errors.New("down")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func strPtr(s string) *string { return &s }

func TestHandlersRequireUser(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	RegisterRoutes(mux, NewFolderHandler(&fakeService{}, logger), NewCardHandler(&fakeService{}, logger), NewHealthHandler(nil, logger))

	rec := do(t, mux, http.MethodGet, "/api/folders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotFoundDetails(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore(logger)
	svc := placement.NewPlacementService(store.Folders, store.Cards, store.TxManager, logger)
	h := newTestMux(svc, nil)

	card, err := svc.CreateCard(ctx, "user-1", &placementSvc.CreateCardRequest{Title: "Plan"})
	require.NoError(t, err)
	othersFolder, err := svc.CreateFolder(ctx, "user-2", &placementSvc.CreateFolderRequest{Name: "Private"})
	require.NoError(t, err)
	missing := uuid.NewString()

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		wantDetail   string
		wantResource string
	}{
		{"create under missing parent", http.MethodPost, "/api/folders", `{"name":"x","parent_id":"` + missing + `"}`, "parent folder not found", "parent_folder"},
		{"move card to missing folder", http.MethodPut, "/api/cards/" + card.ID + "/move", `{"folder_id":"` + missing + `"}`, "target folder not found", "target_folder"},
		{"move missing card", http.MethodPut, "/api/cards/" + missing + "/move", `{"folder_id":null}`, "card not found", "card"},
		{"get missing folder", http.MethodGet, "/api/folders/" + missing, "", "folder not found", "folder"},
		// Another user's folder reads exactly like a missing one
		{"get another user's folder", http.MethodGet, "/api/folders/" + othersFolder.ID, "", "folder not found", "folder"},
		{"move card into another user's folder", http.MethodPut, "/api/cards/" + card.ID + "/move", `{"folder_id":"` + othersFolder.ID + `"}`, "target folder not found", "target_folder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)

			require.Equal(t, http.StatusNotFound, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantDetail, problem["detail"])
			assert.Equal(t, tt.wantResource, problem["resource_type"])
			assert.NotContains(t, problem, "resource_id")
		})
	}
}
