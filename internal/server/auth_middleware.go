package server

import (
	"net/http"
	"strconv"
	"strings"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/server/authctx"
	"funnybanny-backend/internal/service"
)

// TokenVerifier parses access tokens; service.AuthService implements it.
type TokenVerifier interface {
	Verify(token string) (service.Claims, error)
}

// AuthMiddleware validates the bearer token and sets the current user in context.
func AuthMiddleware(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !claims.Role.Valid() {
				writeAuthError(w, http.StatusUnauthorized, "invalid role")
				return
			}
			ctx := authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{
				AccountID: claims.AccountID,
				Role:      claims.Role,
				LinkID:    claims.LinkID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole ensures the user has one of the allowed roles.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := authctx.FromContext(r.Context())
			if u == nil {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"status":"error","message":"` + message + `","data":null,"error":{"code":` +
		strconv.Itoa(status) + `,"status":"` + http.StatusText(status) + `"}}`))
}
