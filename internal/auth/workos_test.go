package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestWorkOSProvider_GetLoginURL(t *testing.T) {
	provider := NewWorkOSProvider(WorkOSConfig{
		APIKey:      "sk_test",
		ClientID:    "client_abc",
		RedirectURL: "http://localhost:3001/auth/callback",
	})

	loginURL := provider.GetLoginURL("state-xyz")

	parsed, err := url.Parse(loginURL)
	if err != nil {
		t.Fatalf("login URL is not parseable: %v", err)
	}
	if !strings.HasPrefix(loginURL, defaultWorkOSAuthorizeURL) {
		t.Errorf("login URL should start with %s, got %s", defaultWorkOSAuthorizeURL, loginURL)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client_abc" {
		t.Errorf("client_id = %q, want %q", q.Get("client_id"), "client_abc")
	}
	if q.Get("redirect_uri") != "http://localhost:3001/auth/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q, want code", q.Get("response_type"))
	}
	if q.Get("state") != "state-xyz" {
		t.Errorf("state = %q, want state-xyz", q.Get("state"))
	}
}

func TestWorkOSProvider_ExchangeCode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var req workosAuthenticateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.GrantType != "authorization_code" {
			t.Errorf("grant_type = %q, want authorization_code", req.GrantType)
		}
		if req.Code != "code-123" {
			t.Errorf("code = %q, want code-123", req.Code)
		}
		if req.ClientSecret != "sk_test" {
			t.Errorf("client_secret = %q, want sk_test", req.ClientSecret)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"id":         "user_01ABC",
				"email":      "traveler@example.com",
				"first_name": "Ada",
				"last_name":  "Lovelace",
			},
		})
	}))
	defer server.Close()

	provider := NewWorkOSProvider(WorkOSConfig{
		APIKey:          "sk_test",
		ClientID:        "client_abc",
		RedirectURL:     "http://localhost:3001/auth/callback",
		AuthenticateURL: server.URL,
	})

	user, err := provider.ExchangeCode(context.Background(), "code-123")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if user.ID != "user_01ABC" {
		t.Errorf("ID = %q, want user_01ABC", user.ID)
	}
	if user.Email != "traveler@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Errorf("name = %q %q, want Ada Lovelace", user.FirstName, user.LastName)
	}
}

func TestWorkOSProvider_ExchangeCode_NonOKStatus_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	provider := NewWorkOSProvider(WorkOSConfig{
		APIKey:          "sk_test",
		ClientID:        "client_abc",
		AuthenticateURL: server.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "expired-code")
	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should include status code: %v", err)
	}
}

func TestWorkOSProvider_ExchangeCode_EmptyUserID_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{}}`))
	}))
	defer server.Close()

	provider := NewWorkOSProvider(WorkOSConfig{
		APIKey:          "sk_test",
		ClientID:        "client_abc",
		AuthenticateURL: server.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "code")
	if err == nil {
		t.Fatal("expected error for empty user ID")
	}
}
