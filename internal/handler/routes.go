package handler

import "net/http"

// RegisterRoutes mounts every API route on mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, cards *CardHandler, health *HealthHandler) {
	mux.HandleFunc("GET /health", health.HealthCheck)

	// Folder routes; literal segments win over {id}
	mux.HandleFunc("POST /api/folders", folders.CreateFolder)
	mux.HandleFunc("GET /api/folders", folders.ListFolders)
	mux.HandleFunc("GET /api/folders/tree", folders.GetTree)
	mux.HandleFunc("POST /api/folders/reorder", folders.ReorderFolders)
	mux.HandleFunc("GET /api/folders/{id}", folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", folders.RenameFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.DeleteFolder)
	mux.HandleFunc("PUT /api/folders/{id}/parent", folders.MoveFolder)

	// Card routes
	mux.HandleFunc("POST /api/cards", cards.CreateCard)
	mux.HandleFunc("GET /api/cards", cards.ListCards)
	mux.HandleFunc("GET /api/cards/{id}", cards.GetCard)
	mux.HandleFunc("PATCH /api/cards/{id}", cards.UpdateCard)
	mux.HandleFunc("DELETE /api/cards/{id}", cards.DeleteCard)
	mux.HandleFunc("PUT /api/cards/{id}/move", cards.MoveCard)
	mux.HandleFunc("PUT /api/cards/{id}/star", cards.ToggleStar)
}
