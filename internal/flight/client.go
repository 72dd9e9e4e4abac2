// Package flight はAmadeus Self-Service APIによるフライト検索機能を提供する。
// OAuth2クライアントクレデンシャルのトークンキャッシュとオファーの平坦化を含む。
package flight

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
	"sync"
	"time"

	"github.com/limitless/adventures/internal/model"
)

const (
	defaultTokenURL  = "https://test.api.amadeus.com/v1/security/oauth2/token"
	defaultSearchURL = "https://test.api.amadeus.com/v2/shopping/flight-offers"

	// maxOffers はレスポンスに含める最大オファー数。
	maxOffers = 5
	// tokenRefreshMargin はトークン期限切れ前に再取得を始める余裕時間。
	tokenRefreshMargin = 60 * time.Second
)

// Config はAmadeusクライアントの設定。
type Config struct {
	ClientID     string
	ClientSecret string

	// テスト用にオーバーライド可能なURL
	TokenURL  string
	SearchURL string
}

// SearchQuery はフライト検索の入力条件。
type SearchQuery struct {
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string // 空なら片道
	Adults      int
}

// SearchResult はフライト検索の結果。
// オファーが見つからない場合もFound=falseで正常応答として返す。
type SearchResult struct {
	Found    bool                 `json:"found"`
	Count    int                  `json:"count,omitempty"`
	Cheapest *model.FlightOffer   `json:"cheapest,omitempty"`
	Offers   []*model.FlightOffer `json:"offers,omitempty"`
	Message  string               `json:"message,omitempty"`
}

// Client はAmadeus Self-Service APIのクライアント。
// アクセストークンをキャッシュし、期限切れ間際に再取得する。
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient はClient の新しいインスタンスを生成する。
func NewClient(config Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.SearchURL == "" {
		config.SearchURL = defaultSearchURL
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// amadeusTokenResponse はトークンエンドポイントのレスポンス。
type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// getAccessToken はキャッシュ済みトークンを返す。
// 未取得または期限切れ間際の場合はclient_credentialsで再取得する。
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp amadeusTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return c.accessToken, nil
}

// amadeusSegment はフライトオファー内の1区間。
type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
}

// amadeusOffer はフライトオファー1件。
type amadeusOffer struct {
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string           `json:"duration"`
		Segments []amadeusSegment `json:"segments"`
	} `json:"itineraries"`
}

// amadeusSearchResponse はフライト検索エンドポイントのレスポンス。
type amadeusSearchResponse struct {
	Data []amadeusOffer `json:"data"`
}

// Search は指定条件でフライトオファーを検索する。
// オファーは価格昇順（APIのデフォルト順）のまま最大5件に切り詰めて返す。
// 件数ゼロはエラーではなくFound=falseの結果として返す。
func (c *Client) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	params := url.Values{
		"originLocationCode":      {query.Origin},
		"destinationLocationCode": {query.Destination},
		"departureDate":           {query.DepartDate},
		"adults":                  {strconv.Itoa(query.Adults)},
		"max":                     {strconv.Itoa(maxOffers)},
		"currencyCode":            {"USD"},
	}
	if query.ReturnDate != "" {
		params.Set("returnDate", query.ReturnDate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.SearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("フライト検索APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("origin", query.Origin),
			slog.String("destination", query.Destination),
		)
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("フライト検索APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("origin", query.Origin),
			slog.String("destination", query.Destination),
		)
		return nil, fmt.Errorf("search request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp amadeusSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if len(searchResp.Data) == 0 {
		return &SearchResult{
			Found:   false,
			Message: "指定された条件のフライトが見つかりませんでした。",
		}, nil
	}

	data := searchResp.Data
	if len(data) > maxOffers {
		data = data[:maxOffers]
	}

	offers := make([]*model.FlightOffer, 0, len(data))
	for _, raw := range data {
		offer := flattenOffer(raw)
		if offer != nil {
			offers = append(offers, offer)
		}
	}

	if len(offers) == 0 {
		return &SearchResult{
			Found:   false,
			Message: "指定された条件のフライトが見つかりませんでした。",
		}, nil
	}

	return &SearchResult{
		Found:    true,
		Count:    len(offers),
		Cheapest: offers[0],
		Offers:   offers,
	}, nil
}

// flattenOffer はAmadeusのオファーをクライアント向けの平坦な形式に変換する。
// 出発は往路の最初の区間、到着は往路の最後の区間から取り、
// 経由回数は区間数-1として計算する。区間が空のオファーはnilを返す。
func flattenOffer(raw amadeusOffer) *model.FlightOffer {
	if len(raw.Itineraries) == 0 {
		return nil
	}
	outbound := raw.Itineraries[0]
	if len(outbound.Segments) == 0 {
		return nil
	}

	first := outbound.Segments[0]
	last := outbound.Segments[len(outbound.Segments)-1]

	return &model.FlightOffer{
		Price:         raw.Price.GrandTotal,
		Currency:      raw.Price.Currency,
		Airline:       first.CarrierCode,
		Departure:     first.Departure.IataCode,
		Arrival:       last.Arrival.IataCode,
		DepartureTime: first.Departure.At,
		ArrivalTime:   last.Arrival.At,
		Stops:         len(outbound.Segments) - 1,
		Duration:      outbound.Duration,
		Itineraries:   len(raw.Itineraries),
	}
}
