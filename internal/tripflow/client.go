// Package tripflow はバックエンドAPIを利用するクライアント側の
// トリップ検索・保存ワークフローを提供する。
package tripflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/limitless/adventures/internal/flight"
)

// MeStatus はログイン状態の確認結果。
type MeStatus struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
}

// SearchInput はフライト検索の入力。
type SearchInput struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"departDate"`
	ReturnDate  string `json:"returnDate,omitempty"`
	Adults      int    `json:"adults"`
}

// SaveTripInput はトリップ保存の入力。
type SaveTripInput struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartDate    string  `json:"departDate"`
	ReturnDate    *string `json:"returnDate,omitempty"`
	Adults        int     `json:"adults"`
	CheapestPrice *string `json:"cheapestPrice,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	Airline       *string `json:"airline,omitempty"`
	Stops         *int    `json:"stops,omitempty"`
}

// TripSummary は保存済みトリップの一覧項目。
type TripSummary struct {
	ID            string  `json:"id"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartDate    string  `json:"departDate"`
	ReturnDate    *string `json:"returnDate"`
	Adults        int     `json:"adults"`
	CheapestPrice *string `json:"cheapestPrice"`
	Currency      *string `json:"currency"`
	Airline       *string `json:"airline"`
	Stops         *int    `json:"stops"`
	SavedAt       int64   `json:"savedAt"`
}

// Client はバックエンドAPIのHTTPクライアント。
// セッションCookieを保持するためcookie jarを使用する。
type Client struct {
	baseURL    string
	httpClient *http.Client
	csrfToken  string
}

// NewClient はClientを生成する。
// baseURLはAPIサーバーのルートURL（例: http://localhost:3001）。
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Me は現在のログイン状態を取得する。
func (c *Client) Me(ctx context.Context) (*MeStatus, error) {
	var status MeStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SearchFlights はフライト検索を実行する。
func (c *Client) SearchFlights(ctx context.Context, input SearchInput) (*flight.SearchResult, error) {
	var result flight.SearchResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/flights", input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveTrip はトリップを保存し、新規IDを返す。
func (c *Client) SaveTrip(ctx context.Context, input SaveTripInput) (string, error) {
	if err := c.ensureCSRFToken(ctx); err != nil {
		return "", err
	}
	var resp struct {
		Success bool   `json:"success"`
		TripID  string `json:"tripId"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/trips/save", input, &resp); err != nil {
		return "", err
	}
	return resp.TripID, nil
}

// ListTrips は保存済みトリップの一覧を取得する。
func (c *Client) ListTrips(ctx context.Context) ([]TripSummary, error) {
	var resp struct {
		Trips []TripSummary `json:"trips"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/trips", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trips, nil
}

// DeleteTrip は保存済みトリップを削除する。
func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	if err := c.ensureCSRFToken(ctx); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/trips/"+tripID, nil, nil)
}

// ensureCSRFToken は状態変更リクエスト用のCSRFトークンを取得する。
// 取得済みの場合は再利用する（Cookieはjarが保持する）。
func (c *Client) ensureCSRFToken(ctx context.Context) error {
	if c.csrfToken != "" {
		return nil
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/csrf-token", nil, &resp); err != nil {
		return fmt.Errorf("failed to obtain CSRF token: %w", err)
	}
	c.csrfToken = resp.Token
	return nil
}

// doJSON はJSONリクエストを送信し、レスポンスをoutにデコードする。
// 2xx以外のステータスはエラーとして返す。
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrfToken != "" && method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", c.csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
