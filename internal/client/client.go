package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bookvault/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// APIError is a non-2xx response from the server, carrying the status code
// and the server's error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%q", e.StatusCode, e.Message)
}

// Client talks to the BookVault API and keeps the session in the injected
// store. It is the programmatic counterpart of the browser session client:
// login stores the token and user view, logout clears them, and
// IsAuthenticated gates client-side behavior only. The server re-verifies
// the token on every request regardless.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	session    SessionStore
}

// New creates an API client. apiKey may be empty when the deployment does
// not enforce the static key check.
func New(baseURL, apiKey string, session SessionStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		session:    session,
	}
}

// Signup registers a new account. No session is established; call Login next.
func (c *Client) Signup(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", body, nil)
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

// Login authenticates and stores the returned token and user view.
func (c *Client) Login(ctx context.Context, email, password string) (*model.PublicUser, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := c.session.SetSession(resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return resp.User, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*model.PublicUser, error) {
	var user model.PublicUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/change-password", body, nil)
}

// DeleteAccount removes the authenticated user's account and clears the
// local session.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/delete-account", body, nil); err != nil {
		return err
	}
	return c.session.Clear()
}

// Logout clears the stored token and user view.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// IsAuthenticated reports whether a stored token exists and has not expired.
// The token is decoded without signature verification; only the server holds
// the signing secret, and the real boundary is the server's middleware.
func (c *Client) IsAuthenticated() bool {
	tokenString := c.session.Token()
	if tokenString == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}

// IsAdmin reports whether the stored user view carries the admin role. Used
// to gate client-side rendering of admin pages; the server decides for real.
func (c *Client) IsAdmin() bool {
	user := c.session.User()
	return user != nil && user.Role == model.RoleAdmin
}

// doJSON sends a JSON request, attaching the API key and the bearer token
// when present, and decodes the response into result.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
