// Package payment はStripe Checkoutによる決済セッション作成機能を提供する。
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultCheckoutSessionURL = "https://api.stripe.com/v1/checkout/sessions"

// StripeConfig はStripeクライアントの設定。
type StripeConfig struct {
	SecretKey string

	// テスト用にオーバーライド可能なURL
	CheckoutSessionURL string
}

// CheckoutInput は決済セッション作成の入力。
type CheckoutInput struct {
	ServiceName  string
	ServiceID    string
	Description  string
	PriceInCents int64
	Origin       string // 成功/キャンセル時のリダイレクト先の基点URL
}

// CheckoutSession は作成された決済セッション。
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// StripeClient はStripe Checkout Sessions APIのクライアント。
// フォームエンコードされたリクエストをBearer認証で送信する。
type StripeClient struct {
	config     StripeConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStripeClient はStripeClientを生成する。
func NewStripeClient(config StripeConfig, httpClient *http.Client, logger *slog.Logger) *StripeClient {
	if config.CheckoutSessionURL == "" {
		config.CheckoutSessionURL = defaultCheckoutSessionURL
	}
	return &StripeClient{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// stripeSessionResponse はセッション作成エンドポイントのレスポンス。
type stripeSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession はカード決済用のCheckoutセッションを作成する。
// 成功/キャンセル時はOriginのservices.htmlへリダイレクトされる。
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error) {
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Limitless Adventure — %s", input.ServiceName)
	}

	form := url.Values{}
	form.Set("payment_method_types[0]", "card")
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(input.PriceInCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", input.ServiceName)
	form.Set("line_items[0][price_data][product_data][description]", description)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", input.Origin+"/services.html?session_id={CHECKOUT_SESSION_ID}&status=success")
	form.Set("cancel_url", input.Origin+"/services.html?status=cancelled")
	if input.ServiceID != "" {
		form.Set("metadata[serviceId]", input.ServiceID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.CheckoutSessionURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Stripe APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("service_name", input.ServiceName),
		)
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Stripe APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("service_name", input.ServiceName),
		)
		return nil, fmt.Errorf("checkout request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var sessionResp stripeSessionResponse
	if err := json.Unmarshal(body, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to parse checkout response: %w", err)
	}
	if sessionResp.URL == "" {
		return nil, fmt.Errorf("empty session URL in checkout response")
	}

	return &CheckoutSession{
		ID:  sessionResp.ID,
		URL: sessionResp.URL,
	}, nil
}
