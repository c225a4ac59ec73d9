package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lifeweeks/internal/common"
	"lifeweeks/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// authMiddleware validates the bearer token and stores the user id in the
// request context. An expired token produces a 401 whose body carries the
// token-expired marker, which tells the client to refresh and retry.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(common.AccessTokenHeaderName)
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		if tokenString == "" || tokenString == authHeader {
			http.Error(w, "no token provided", http.StatusUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(tokenString, s.secretKey)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				http.Error(w, common.ErrTokenExpired.Error(), http.StatusUnauthorized)
				return
			}
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userIDFromContext returns the authenticated user id placed by
// authMiddleware.
func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
