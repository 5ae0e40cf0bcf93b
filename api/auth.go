// ABOUTME: AuthService: login, registration, and current-user lookup.
// ABOUTME: Token issuance is the backend's job; this only carries credentials and stores nothing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is the authenticated identity as the backend reports it. The ID is
// kept in string form; ownership checks elsewhere compare strings only.
type User struct {
	ID    string
	Name  string
	Email string
}

// AuthService exposes the backend's session endpoints.
type AuthService struct {
	c *Client
}

// NewAuthService wraps the client with auth operations.
func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

func decodeUser(raw map[string]any) User {
	u := User{}
	if v, ok := raw["id"]; ok && v != nil {
		u.ID = fmt.Sprintf("%v", normalizeID(v))
	}
	if v, ok := raw["name"].(string); ok {
		u.Name = v
	}
	if v, ok := raw["email"].(string); ok {
		u.Email = v
	}
	return u
}

// normalizeID renders numeric ids without a decimal point.
func normalizeID(v any) any {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return v
}

// Login exchanges credentials for a bearer token and the user record.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, User, error) {
	body := map[string]string{"email": email, "password": password}
	data, _, err := s.c.do(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return "", User{}, err
	}
	return decodeAuthResponse(data)
}

// Register creates an account and returns the initial token and user record.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	data, _, err := s.c.do(ctx, http.MethodPost, "/auth/register", body, false)
	if err != nil {
		return "", User{}, err
	}
	return decodeAuthResponse(data)
}

// Me returns the user the current token belongs to.
func (s *AuthService) Me(ctx context.Context) (User, error) {
	data, _, err := s.c.do(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return User{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return User{}, fmt.Errorf("decoding user: %w", err)
	}
	return decodeUser(raw), nil
}

func decodeAuthResponse(data json.RawMessage) (string, User, error) {
	var payload struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", User{}, fmt.Errorf("decoding auth response: %w", err)
	}
	if payload.Token == "" {
		return "", User{}, &AuthenticationError{RequestError{
			APIError: APIError{Message: "backend returned no token"},
		}}
	}
	return payload.Token, decodeUser(payload.User), nil
}
