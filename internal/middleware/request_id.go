package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/baharkarakas/user-directory/internal/logger"
)

type reqIDKeyType struct{}

var requestIDKey reqIDKeyType

const RequestIDHeader = "X-Request-Id"

func RequestIDFrom(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestID tags each request with an id (reusing a well-formed incoming
// X-Request-Id) and attaches a logger carrying it.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := context.WithValue(r.Context(), requestIDKey, id)
			ctx = logger.WithContext(ctx, logger.From(ctx, base).With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
