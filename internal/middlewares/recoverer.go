package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
)

// Recoverer turns panics into a 500 JSON response. In development the stack
// trace is included in the body; it is always logged.
func Recoverer(development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := string(debug.Stack())
				logger.Log.Errorw("panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", stack,
				)

				body := errorBody{Status: statusError, Message: "Internal server error"}
				if development {
					body.Stack = stack
				}
				writeJSON(w, http.StatusInternalServerError, body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
