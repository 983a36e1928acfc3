package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"foodrec/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestID ensures every request carries an X-Request-ID in its context and
// response header. A client-supplied ID is kept; otherwise a UUIDv7 is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}

		ctx := context.WithValue(r.Context(), observability.RequestIDKey, id)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
