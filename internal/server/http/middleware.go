package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/audiovault/audiovault/internal/common"
	"github.com/audiovault/audiovault/internal/server/auth"
	"github.com/audiovault/audiovault/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

const (
	msgTokenMissing   = "Token is missing"
	msgSessionExpired = "Your login session has expired please log out and log back in"
)

// authMiddleware extracts the bearer token, verifies it, and resolves the
// subject to a live user record stored in the request context. Any failure
// (expired, bad signature, malformed, unknown subject) yields the same 401
// body. CORS preflight requests pass through untouched.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			WriteError(w, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		tokenString, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || tokenString == "" {
			WriteError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}

		userID, err := auth.GetUserIDFromToken(tokenString, s.jwtSecret)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}

		// The subject may have been deleted after the token was issued;
		// treat that as an unauthenticated request.
		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, msgSessionExpired)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user stored by authMiddleware,
// or nil when the request did not pass through it.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
