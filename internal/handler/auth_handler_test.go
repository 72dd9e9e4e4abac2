package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/limitless/adventures/internal/middleware"
	"github.com/limitless/adventures/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック。
type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (string, *model.SessionClaims, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return "https://idp.example.com/authorize?state=" + state
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (string, *model.SessionClaims, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return "", nil, errors.New("not implemented")
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

// mockTokenVerifier はmiddleware.TokenVerifierのモック。
type mockTokenVerifier struct {
	verifyFn func(token string) (*model.SessionClaims, error)
}

func (m *mockTokenVerifier) Verify(token string) (*model.SessionClaims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, errors.New("invalid token")
}

var _ middleware.TokenVerifier = (*mockTokenVerifier)(nil)

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		BaseURL:       "http://localhost:5173",
		SessionMaxAge: 604800,
	}
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_RedirectsToProviderWithState(t *testing.T) {
	var usedState string
	service := &mockAuthService{
		getLoginURLFn: func(state string) string {
			usedState = state
			return "https://idp.example.com/authorize?state=" + state
		},
	}
	h := NewAuthHandler(service, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if usedState == "" {
		t.Fatal("expected non-empty state")
	}

	stateCookie := cookieByName(rec.Result().Cookies(), oauthStateCookie)
	if stateCookie == nil {
		t.Fatal("expected oauth_state cookie")
	}
	if stateCookie.Value != usedState {
		t.Errorf("cookie state = %q, login URL state = %q", stateCookie.Value, usedState)
	}
	if !stateCookie.HttpOnly {
		t.Error("state cookie must be HttpOnly")
	}

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, usedState) {
		t.Errorf("redirect location %q does not carry state", loc)
	}
}

func TestCallback_Success_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (string, *model.SessionClaims, error) {
			if code != "auth-code-1" {
				t.Errorf("code = %q, want auth-code-1", code)
			}
			return "jwt-token", &model.SessionClaims{UserID: "U1"}, nil
		},
	}
	h := NewAuthHandler(service, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=auth-code-1&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:5173" {
		t.Errorf("redirect location = %q, want frontend base URL", loc)
	}

	sessionCookie := cookieByName(rec.Result().Cookies(), middleware.SessionCookieName)
	if sessionCookie == nil {
		t.Fatal("expected session_token cookie")
	}
	if sessionCookie.Value != "jwt-token" {
		t.Errorf("session cookie value = %q, want jwt-token", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if sessionCookie.MaxAge != 604800 {
		t.Errorf("session cookie MaxAge = %d, want 604800", sessionCookie.MaxAge)
	}
	if sessionCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("session cookie SameSite = %v, want Lax", sessionCookie.SameSite)
	}

	// stateクッキーは削除される
	stateCookie := cookieByName(rec.Result().Cookies(), oauthStateCookie)
	if stateCookie == nil || stateCookie.MaxAge != -1 {
		t.Error("expected oauth_state cookie to be cleared")
	}
}

func TestCallback_StateMismatch_RedirectsWithError(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (string, *model.SessionClaims, error) {
			t.Error("HandleCallback should not be called on state mismatch")
			return "", nil, errors.New("unreachable")
		},
	}
	h := NewAuthHandler(service, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "original"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=auth_failed") {
		t.Errorf("redirect location = %q, want auth_failed error", loc)
	}
}

func TestCallback_MissingCode_RedirectsWithError(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=auth_failed") {
		t.Errorf("redirect location = %q, want auth_failed error", loc)
	}
}

func TestCallback_ExchangeFailure_RedirectsWithError(t *testing.T) {
	service := &mockAuthService{
		handleCallbackFn: func(ctx context.Context, code string) (string, *model.SessionClaims, error) {
			return "", nil, errors.New("exchange failed")
		},
	}
	h := NewAuthHandler(service, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=c&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "s1"})
	rec := httptest.NewRecorder()

	h.Callback(rec, req)

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=auth_failed") {
		t.Errorf("redirect location = %q, want auth_failed error", loc)
	}

	// セッションCookieは設定されない
	if cookieByName(rec.Result().Cookies(), middleware.SessionCookieName) != nil {
		t.Error("session cookie must not be set on failure")
	}
}

// ログアウトはCookieの有無にかかわらず成功する。
func TestLogout_ClearsCookieUnconditionally(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}

	sessionCookie := cookieByName(rec.Result().Cookies(), middleware.SessionCookieName)
	if sessionCookie == nil {
		t.Fatal("expected session cookie clear")
	}
	if sessionCookie.MaxAge != -1 || sessionCookie.Value != "" {
		t.Error("expected session cookie to be expired and emptied")
	}
}

func TestMe_Authenticated(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(token string) (*model.SessionClaims, error) {
			return &model.SessionClaims{
				UserID:    "U1",
				Email:     "a@example.com",
				FirstName: "Alex",
				LastName:  "Doe",
			}, nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, verifier, nopMetrics{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "jwt"})
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if !body.Authenticated {
		t.Error("expected authenticated = true")
	}
	if body.UserID != "U1" || body.Email != "a@example.com" {
		t.Errorf("body = %+v", body)
	}
}

// /api/meは未認証でも401を返さず、常に200で状態を返す。
func TestMe_Unauthenticated_Returns200(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no cookie", func(r *http.Request) {}},
		{"invalid token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "garbage"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{}, &mockTokenVerifier{}, nopMetrics{}, testAuthConfig())

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			h.Me(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var body meResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse body: %v", err)
			}
			if body.Authenticated {
				t.Error("expected authenticated = false")
			}
			if body.UserID != "" {
				t.Error("expected no user fields for unauthenticated response")
			}
		})
	}
}
