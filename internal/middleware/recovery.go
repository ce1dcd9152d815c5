// File: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"

	"cinehub/internal/response"
	"cinehub/internal/services"

	"go.uber.org/zap"
)

// Recovery turns a handler panic into the generic retry response
func Recovery(builder *response.Builder) func(http.Handler) http.Handler {
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

				GetRequestLogger(r.Context()).Error("Panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)

				builder.WriteError(w, r, services.NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
