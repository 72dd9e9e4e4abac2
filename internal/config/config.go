package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSessionSecret はSESSION_SECRET未設定時の開発用フォールバック値。
// 本番環境（APP_ENV=production）では使用を拒否し、起動を失敗させる。
const DevSessionSecret = "dev-insecure-session-secret"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// WorkOS（外部IdP）
	WorkOSAPIKey      string
	WorkOSClientID    string
	WorkOSRedirectURL string

	// Session
	SessionSecret string
	SessionMaxAge int // 秒。デフォルトは7日間

	// Amadeus（フライト検索）
	AmadeusClientID     string
	AmadeusClientSecret string

	// Stripe（決済）
	StripeSecretKey string

	// Rate Limit
	RateLimitGeneral int // 認証済みAPI req/min/user
	RateLimitSearch  int // フライト検索 req/min/IP

	// Server
	AppEnv     string
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// IsProduction は本番環境として起動しているかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// SESSION_SECRETのみ特別扱いで、開発環境に限りフォールバック値で起動を許す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.WorkOSAPIKey = os.Getenv("WORKOS_API_KEY")
	if cfg.WorkOSAPIKey == "" {
		missing = append(missing, "WORKOS_API_KEY")
	}

	cfg.WorkOSClientID = os.Getenv("WORKOS_CLIENT_ID")
	if cfg.WorkOSClientID == "" {
		missing = append(missing, "WORKOS_CLIENT_ID")
	}

	cfg.WorkOSRedirectURL = os.Getenv("WORKOS_REDIRECT_URL")
	if cfg.WorkOSRedirectURL == "" {
		missing = append(missing, "WORKOS_REDIRECT_URL")
	}

	cfg.AmadeusClientID = os.Getenv("AMADEUS_CLIENT_ID")
	if cfg.AmadeusClientID == "" {
		missing = append(missing, "AMADEUS_CLIENT_ID")
	}

	cfg.AmadeusClientSecret = os.Getenv("AMADEUS_CLIENT_SECRET")
	if cfg.AmadeusClientSecret == "" {
		missing = append(missing, "AMADEUS_CLIENT_SECRET")
	}

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.AppEnv = getEnvString("APP_ENV", "development")

	// セッション署名シークレット。
	// 未設定で本番の場合は弱い鍵での起動を拒否する。開発時は警告の上でフォールバックする。
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("SESSION_SECRET must be set when APP_ENV=production")
		}
		slog.Warn("SESSION_SECRET is not set, using insecure development fallback",
			slog.String("app_env", cfg.AppEnv),
		)
		cfg.SessionSecret = DevSessionSecret
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", int((7 * 24 * time.Hour).Seconds()))
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSearch = getEnvInt("RATE_LIMIT_SEARCH", 20)
	cfg.ServerPort = getEnvString("SERVER_PORT", "3001")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
