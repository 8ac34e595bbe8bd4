package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/sefa-b/bank-registry/internal/utils"
)

// Recover converts a handler panic into a generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				utils.Error("panic",
					"request_id", RequestIDFromContext(r.Context()),
					"err", rec,
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
