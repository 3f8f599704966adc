package handler

import (
	"log/slog"
	"net/http"

	placementSvc "cardshelf/internal/domain/services/placement"
	"cardshelf/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	service placementSvc.PlacementService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(service placementSvc.PlacementService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		service: service,
		logger:  logger,
	}
}

// CreateFolder creates a folder
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var req placementSvc.CreateFolderRequest
	if !parseBody(w, r, &req) {
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), userID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ListFolders returns the user's folders as a flat list
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	folders, err := h.service.ListFolders(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetTree returns the user's folders nested by parent
// GET /api/folders/tree
func (h *FolderHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	roots, err := h.service.ListFolderTree(r.Context(), userID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": roots})
}

// GetFolder retrieves a folder
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	folder, err := h.service.GetFolder(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var req placementSvc.RenameFolderRequest
	if !parseBody(w, r, &req) {
		return
	}

	folder, err := h.service.RenameFolder(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// MoveFolder reparents a folder
// PUT /api/folders/{id}/parent
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var body struct {
		ParentID httputil.OptionalString `json:"parent_id"`
	}
	if !parseBody(w, r, &body) {
		return
	}
	if !body.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "parent_id is required (null moves to root)")
		return
	}

	req := placementSvc.MoveFolderRequest{ParentID: body.ParentID.Value}
	folder, err := h.service.MoveFolder(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder, promoting its children
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteFolder(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ReorderFolders writes explicit sibling order values
// POST /api/folders/reorder
func (h *FolderHandler) ReorderFolders(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var req placementSvc.ReorderFoldersRequest
	if !parseBody(w, r, &req) {
		return
	}

	if err := h.service.ReorderFolders(r.Context(), userID, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}
