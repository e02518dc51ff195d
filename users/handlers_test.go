package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/domain"
	"github.com/user/forum-go/storage/memory"
)

func newRouter(svc *UserService, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				claims := &auth.CustomClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}
				next.ServeHTTP(w, req.WithContext(auth.NewContextWithClaims(req.Context(), claims)))
			})
		})
	}
	r.Route("/users", NewUserHandlers(svc).RegisterRoutes)
	return r
}

func TestHandleGetUserProfile(t *testing.T) {
	store := memory.New()
	u, err := store.CreateUser(context.Background(), &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newRouter(NewUserService(store), u.ID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Message string              `json:"message"`
		Data    UserProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User profile", body.Message)
	assert.Equal(t, u.ID, body.Data.ID)
	assert.NotContains(t, rec.Body.String(), "hash")
}

func TestHandleGetUserProfileWithoutClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(NewUserService(memory.New()), "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleListUsers(t *testing.T) {
	store := memory.New()
	u, err := store.CreateUser(context.Background(), &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newRouter(NewUserService(store), u.ID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []UserProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "alice", body.Data[0].Username)
}
