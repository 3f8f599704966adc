package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"cardshelf/internal/domain"
	"cardshelf/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Typed errors carry their own status and user-facing message; a bare sentinel
// gets a generic one. Anything unclassified is logged and reported as a 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		conflictErr *domain.ConflictError
		notFoundErr *domain.NotFoundError
		httpErr     domain.HTTPError
	)

	switch {
	case errors.As(err, &conflictErr):
		httputil.RespondProblem(w, httputil.NewProblem(conflictErr.StatusCode(), conflictErr.Error()).
			With("resource_type", conflictErr.ResourceType).
			With("resource_id", conflictErr.ResourceID))
	case errors.As(err, &notFoundErr):
		httputil.RespondProblem(w, httputil.NewProblem(notFoundErr.StatusCode(), notFoundErr.Error()).
			With("resource_type", notFoundErr.Resource))
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, "conflicting change, retry the request")
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	default:
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"user_id", httputil.GetUserID(r),
			"error", err,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseBody decodes the JSON body into dest, writing a 400 or 413 on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
