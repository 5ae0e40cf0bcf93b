// ABOUTME: Tests for AuthService login, registration, and current-user lookup.
// ABOUTME: Covers credential wiring, numeric id normalization, and missing-token rejection.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogin(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry an auth header")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-9",
				"user":  map[string]any{"id": 42, "name": "Dana", "email": "dana@example.com"},
			},
		})
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL))
	token, user, err := auth.Login(context.Background(), "dana@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-9" {
		t.Errorf("token = %q", token)
	}
	// Numeric ids come back as strings without a decimal point.
	if user.ID != "42" {
		t.Errorf("user.ID = %q, want %q", user.ID, "42")
	}
	if user.Name != "Dana" || user.Email != "dana@example.com" {
		t.Errorf("user = %+v", user)
	}
	if gotBody["email"] != "dana@example.com" || gotBody["password"] != "hunter2" {
		t.Errorf("credentials not sent: %v", gotBody)
	}
}

func TestLoginMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"user": map[string]any{"id": "1"}},
		})
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL))
	_, _, err := auth.Login(context.Background(), "a@b.c", "pw")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Errorf("err = %v, want AuthenticationError", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]any{"code": "INVALID_CREDENTIALS", "message": "wrong password"},
		})
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL))
	_, _, err := auth.Login(context.Background(), "a@b.c", "wrong")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if authErr.Code != "INVALID_CREDENTIALS" {
		t.Errorf("code = %q", authErr.Code)
	}
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Dana" {
			t.Errorf("name = %q", body["name"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-new",
				"user":  map[string]any{"id": "7", "name": "Dana"},
			},
		})
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL))
	token, user, err := auth.Register(context.Background(), "dana@example.com", "pw", "Dana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if token != "tok-new" || user.ID != "7" {
		t.Errorf("token = %q user = %+v", token, user)
	}
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 7, "name": "Dana"},
		})
	}))
	defer srv.Close()

	auth := NewAuthService(New(srv.URL, WithTokenSource(func() string { return "tok-1" })))
	user, err := auth.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if user.ID != "7" || user.Name != "Dana" {
		t.Errorf("user = %+v", user)
	}
}
