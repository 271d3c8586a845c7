package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/server/authctx"
	"funnybanny-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]service.Claims

func (s stubVerifier) Verify(token string) (service.Claims, error) {
	c, ok := s[token]
	if !ok {
		return service.Claims{}, service.ErrInvalidToken
	}
	return c, nil
}

func TestAuthMiddleware(t *testing.T) {
	tokens := stubVerifier{
		"admin":   {AccountID: "a1", Role: domain.RoleAdmin},
		"parent":  {AccountID: "p1", Role: domain.RoleParent, LinkID: "c1"},
		"unknown": {AccountID: "x1", Role: "janitor"},
	}
	var seen *authctx.CurrentUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authctx.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(tokens)(RequireRole(domain.RoleAdmin)(next))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "unknown role", header: "Bearer unknown", status: http.StatusUnauthorized},
		{name: "wrong role", header: "Bearer parent", status: http.StatusForbidden},
		{name: "admin", header: "Bearer admin", status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)

			if tt.status != http.StatusNoContent {
				assert.Nil(t, seen)
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "error bodies are JSON")
				assert.Equal(t, "error", body["status"])
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, authctx.CurrentUser{AccountID: "a1", Role: domain.RoleAdmin}, *seen)
		})
	}
}

func TestRequireRoleWithoutUser(t *testing.T) {
	h := RequireRole()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(authctx.WithCurrentUser(req.Context(), authctx.CurrentUser{AccountID: "s1", Role: domain.RoleStaff}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "no roles means any signed-in user")
}
