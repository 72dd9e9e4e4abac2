package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	CookieSecure      bool
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメイン
	TripService     TripServiceInterface
	FlightSearcher  FlightSearcher
	CheckoutCreator CheckoutCreator

	// 運用
	HealthChecker HealthChecker
	Metrics       metrics.MetricsCollector
	Gatherer      prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → (ルートごと) Session → RateLimit
//
// 認証ルート（/auth/*）、/api/me、/api/health、/api/flights、/api/checkout、
// /metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.TokenVerifier, deps.Metrics, deps.AuthConfig)
	tripHandler := NewTripHandler(deps.TripService, deps.Metrics)
	flightHandler := NewFlightHandler(deps.FlightSearcher, deps.Metrics)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutCreator, deps.Metrics)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: deps.CookieSecure,
		CookieDomain: deps.AuthConfig.CookieDomain,
	}

	// --- 認証不要のルート ---

	// 認証フロー
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Get("/logout", authHandler.Logout)
	})

	// ログイン状態の確認（未認証でも200を返す）
	r.Get("/api/me", authHandler.Me)

	// ヘルスチェック
	r.Get("/api/health", healthHandler.Health)

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(csrfConfig))

	// フライト検索（未認証可、IP単位のレート制限）
	r.With(deps.RateLimiter.SearchMiddleware()).Post("/api/flights", flightHandler.SearchFlights)

	// 決済セッション作成（未認証可）
	r.Post("/api/checkout", checkoutHandler.CreateCheckout)

	// Prometheusスクレイプ
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	// Cookieベースの認証を使うため、状態変更メソッドにはCSRFトークンを要求する。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.TokenVerifier))
		r.Use(middleware.NewCSRFMiddleware(csrfConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/trips", func(r chi.Router) {
			r.Get("/", tripHandler.ListTrips)
			r.Post("/save", tripHandler.SaveTrip)
			r.Delete("/{id}", tripHandler.DeleteTrip)
		})
	})

	return r
}
