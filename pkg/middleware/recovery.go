package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "auravindex/pkg/errors"
	httputil "auravindex/pkg/http"
	"auravindex/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.Error("Panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					writeJSONError(w, apperrors.CodeInternal, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSONError renders middleware rejections in the same shape as handler errors.
func writeJSONError(w http.ResponseWriter, code, message string) {
	_ = httputil.WriteError(w, apperrors.FromCode(code, message))
}
