// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baharkarakas/user-directory/internal/api/httpx"
	"github.com/baharkarakas/user-directory/internal/auth"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	authn Authenticator
}

func NewAuthMiddleware(a Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authn: a}
}

// Auth requires "Authorization: Bearer <JWT>" and puts the caller into the
// request context.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, err := m.authn.Authenticate(r.Context(), token)
		if err != nil {
			httpx.WriteServiceError(w, err)
			return
		}
		ctx := WithUser(r.Context(), UserCtx{
			UserID:   claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
