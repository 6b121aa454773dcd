package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/prevalidate/internal/logging"
)

// RunIDHeader carries the validation run id back to the client.
const RunIDHeader = "X-Run-ID"

// RunID assigns every request a fresh validation run id. The id is stored in
// the request context for logging.FromContext and echoed in RunIDHeader.
func RunID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RunIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRunID(r.Context(), id)))
	})
}
