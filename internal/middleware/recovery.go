package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"cardshelf/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response.
// Mounted inside AuthMiddleware so the log line carries the caller's user id.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection as it would without us
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				userID, _ := httputil.UserIDFromContext(r.Context())
				logger.Error("handler panicked",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", userID,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
