package handler

import (
	"log/slog"
	"net/http"

	models "cardshelf/internal/domain/models/placement"
	placementSvc "cardshelf/internal/domain/services/placement"
	"cardshelf/internal/httputil"
)

// CardHandler handles card HTTP requests
type CardHandler struct {
	service placementSvc.PlacementService
	logger  *slog.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(service placementSvc.PlacementService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCard creates a card
// POST /api/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var req placementSvc.CreateCardRequest
	if !parseBody(w, r, &req) {
		return
	}

	card, err := h.service.CreateCard(r.Context(), userID, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, card)
}

// ListCards lists cards, optionally narrowed to a folder, the uncategorized set, or starred cards
// GET /api/cards?folder_id=&uncategorized=&starred=
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var filter models.CardFilter

	if folderID := r.URL.Query().Get("folder_id"); folderID != "" {
		filter.FolderID = &folderID
	}
	uncategorized, err := httputil.QueryBool(r, "uncategorized")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	starred, err := httputil.QueryBool(r, "starred")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Uncategorized = uncategorized
	filter.StarredOnly = starred

	cards, err := h.service.ListCards(r.Context(), userID, filter)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, cards)
}

// GetCard retrieves a card
// GET /api/cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	card, err := h.service.GetCard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, card)
}

// UpdateCard edits title and/or content
// PATCH /api/cards/{id}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var req placementSvc.UpdateCardRequest
	if !parseBody(w, r, &req) {
		return
	}

	card, err := h.service.UpdateCard(r.Context(), userID, r.PathValue("id"), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, card)
}

// DeleteCard deletes a card
// DELETE /api/cards/{id}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCard(r.Context(), userID, r.PathValue("id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondNoContent(w)
}

// MoveCard places a card in a folder; folder_id must be present, null uncategorizes
// PUT /api/cards/{id}/move
func (h *CardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	var body struct {
		FolderID httputil.OptionalString `json:"folder_id"`
	}
	if !parseBody(w, r, &body) {
		return
	}
	if !body.FolderID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "folder_id is required (null for uncategorized)")
		return
	}

	card, err := h.service.MoveCard(r.Context(), userID, r.PathValue("id"), body.FolderID.Value)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, card)
}

// ToggleStar flips a card's starred flag
// PUT /api/cards/{id}/star
func (h *CardHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.RequireUserID(w, r)
	if !ok {
		return
	}

	card, err := h.service.ToggleStar(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, card)
}
