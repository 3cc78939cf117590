package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookvault/internal/model"
	"bookvault/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer fakes the auth endpoints: any login for ada@x.com/p1
// succeeds with a real signed token, profile requires the bearer header.
func newTestServer(t *testing.T, jwtUtil *utils.JWTUtil) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Email != "ada@x.com" || req.Password != "p1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
			return
		}
		token, _ := jwtUtil.GenerateToken(req.Email, model.RoleUser)
		json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"user":  model.PublicUser{Name: "Ada", Email: req.Email, Role: model.RoleUser},
		})
	})

	mux.HandleFunc("GET /api/user/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Access denied"})
			return
		}
		json.NewEncoder(w).Encode(model.PublicUser{Name: "Ada", Email: "ada@x.com", Role: model.RoleUser})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_LoginStoresSession(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	server := newTestServer(t, jwtUtil)

	store := NewMemorySessionStore()
	c := New(server.URL, "", store)

	user, err := c.Login(context.Background(), "ada@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)

	assert.NotEmpty(t, store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "ada@x.com", store.User().Email)
	assert.True(t, c.IsAuthenticated())
}

func TestClient_LoginFailure(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	server := newTestServer(t, jwtUtil)

	store := NewMemorySessionStore()
	c := New(server.URL, "", store)

	_, err := c.Login(context.Background(), "ada@x.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_ProfileSendsBearerToken(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	server := newTestServer(t, jwtUtil)

	store := NewMemorySessionStore()
	c := New(server.URL, "", store)

	_, err := c.Login(context.Background(), "ada@x.com", "p1")
	require.NoError(t, err)

	profile, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", profile.Email)
}

func TestClient_IsAuthenticated_NoToken(t *testing.T) {
	c := New("http://unused", "", NewMemorySessionStore())
	assert.False(t, c.IsAuthenticated())
}

func TestClient_IsAuthenticated_ExpiredToken(t *testing.T) {
	expired := utils.NewJWTUtil("secret", -time.Hour)
	token, _ := expired.GenerateToken("ada@x.com", model.RoleUser)

	store := NewMemorySessionStore()
	require.NoError(t, store.SetSession(token, &model.PublicUser{Email: "ada@x.com"}))

	c := New("http://unused", "", store)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_IsAuthenticated_GarbageToken(t *testing.T) {
	store := NewMemorySessionStore()
	require.NoError(t, store.SetSession("garbage", nil))

	c := New("http://unused", "", store)
	assert.False(t, c.IsAuthenticated())
}

func TestClient_Logout(t *testing.T) {
	jwtUtil := utils.NewJWTUtil("secret", time.Hour)
	server := newTestServer(t, jwtUtil)

	store := NewMemorySessionStore()
	c := New(server.URL, "", store)

	_, err := c.Login(context.Background(), "ada@x.com", "p1")
	require.NoError(t, err)
	require.True(t, c.IsAuthenticated())

	require.NoError(t, c.Logout())
	assert.False(t, c.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
}

func TestClient_IsAdmin(t *testing.T) {
	store := NewMemorySessionStore()
	c := New("http://unused", "", store)

	assert.False(t, c.IsAdmin())

	store.SetSession("token", &model.PublicUser{Email: "boss@x.com", Role: model.RoleAdmin})
	assert.True(t, c.IsAdmin())

	store.SetSession("token", &model.PublicUser{Email: "ada@x.com", Role: model.RoleUser})
	assert.False(t, c.IsAdmin())
}
