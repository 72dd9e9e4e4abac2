package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/limitless/adventures/internal/flight"
	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/middleware"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/payment"
	"github.com/limitless/adventures/internal/session"
)

// healthCheckerFunc はHealthCheckerの関数アダプタ。
type healthCheckerFunc func(ctx context.Context) error

func (f healthCheckerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, codec *session.Codec) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		SearchRate:      rate.Limit(100),
		SearchBurst:     100,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	reg := prometheus.NewRegistry()

	return NewRouter(&RouterDeps{
		TokenVerifier:     codec,
		CORSAllowedOrigin: "http://localhost:5173",
		RateLimiter:       rl,
		AuthService:       &mockAuthService{},
		AuthConfig: AuthHandlerConfig{
			BaseURL:       "http://localhost:5173",
			SessionMaxAge: 604800,
		},
		TripService: &mockTripService{},
		FlightSearcher: &mockFlightSearcher{
			searchFn: func(ctx context.Context, query flight.SearchQuery) (*flight.SearchResult, error) {
				return &flight.SearchResult{Found: false, Message: "not found"}, nil
			},
		},
		CheckoutCreator: &mockCheckoutCreator{
			createFn: func(ctx context.Context, input payment.CheckoutInput) (*payment.CheckoutSession, error) {
				return &payment.CheckoutSession{ID: "cs_1", URL: "https://example.com"}, nil
			},
		},
		HealthChecker: healthCheckerFunc(func(ctx context.Context) error { return nil }),
		Metrics:       metrics.NewCollector(reg),
		Gatherer:      reg,
	})
}

func TestRouter_GuardedRoutes_RequireSession(t *testing.T) {
	codec := session.NewCodec("test-secret", session.DefaultTokenTTL)
	router := newTestRouter(t, codec)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/trips"},
		{http.MethodPost, "/api/trips/save"},
		{http.MethodDelete, "/api/trips/abc"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestRouter_GuardedRoute_AcceptsValidToken(t *testing.T) {
	codec := session.NewCodec("test-secret", session.DefaultTokenTTL)
	router := newTestRouter(t, codec)

	token, err := codec.Mint(model.SessionClaims{UserID: "U1"})
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/trips", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_GuardedMutation_RequiresCSRFToken(t *testing.T) {
	codec := session.NewCodec("test-secret", session.DefaultTokenTTL)
	router := newTestRouter(t, codec)

	token, err := codec.Mint(model.SessionClaims{UserID: "U1"})
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	// CSRFトークンなしは拒否される
	req := httptest.NewRequest(http.MethodDelete, "/api/trips/T1", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status without CSRF token = %d, want 403", rec.Code)
	}

	// Cookieとヘッダが一致すれば通過する
	req = httptest.NewRequest(http.MethodDelete, "/api/trips/T1", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok-1"})
	req.Header.Set("X-CSRF-Token", "tok-1")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status with CSRF token = %d, want 200", rec.Code)
	}
}

func TestRouter_OpenRoutes(t *testing.T) {
	codec := session.NewCodec("test-secret", session.DefaultTokenTTL)
	router := newTestRouter(t, codec)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/me", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/csrf-token", "", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	codec := session.NewCodec("test-secret", session.DefaultTokenTTL)
	router := newTestRouter(t, codec)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
