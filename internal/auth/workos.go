package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	defaultWorkOSAuthorizeURL    = "https://api.workos.com/user_management/authorize"
	defaultWorkOSAuthenticateURL = "https://api.workos.com/user_management/authenticate"
)

// WorkOSConfig はWorkOSプロバイダーの設定。
type WorkOSConfig struct {
	APIKey      string
	ClientID    string
	RedirectURL string

	// テスト用にオーバーライド可能なURL
	AuthorizeURL    string
	AuthenticateURL string
}

// WorkOSProvider はWorkOS AuthKitによる認証を提供する。
type WorkOSProvider struct {
	config     WorkOSConfig
	httpClient *http.Client
}

// NewWorkOSProvider はWorkOSProviderを生成する。
func NewWorkOSProvider(config WorkOSConfig) *WorkOSProvider {
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = defaultWorkOSAuthorizeURL
	}
	if config.AuthenticateURL == "" {
		config.AuthenticateURL = defaultWorkOSAuthenticateURL
	}
	return &WorkOSProvider{
		config:     config,
		httpClient: http.DefaultClient,
	}
}

// GetLoginURL はWorkOS AuthKitの認証URLを生成する。
func (p *WorkOSProvider) GetLoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"provider":      {"authkit"},
		"state":         {state},
	}
	return p.config.AuthorizeURL + "?" + params.Encode()
}

// workosAuthenticateRequest はWorkOSの認証エンドポイントへのリクエストボディ。
type workosAuthenticateRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
}

// workosAuthenticateResponse はWorkOSの認証エンドポイントのレスポンス。
type workosAuthenticateResponse struct {
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user"`
}

// ExchangeCode は認可コードを検証済みユーザー情報に交換する。
func (p *WorkOSProvider) ExchangeCode(ctx context.Context, code string) (*ProviderUser, error) {
	reqBody, err := json.Marshal(workosAuthenticateRequest{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.APIKey,
		GrantType:    "authorization_code",
		Code:         code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode authenticate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.AuthenticateURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read authenticate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var authResp workosAuthenticateResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return nil, fmt.Errorf("failed to parse authenticate response: %w", err)
	}

	if authResp.User.ID == "" {
		return nil, fmt.Errorf("empty user ID in authenticate response")
	}

	return &ProviderUser{
		ID:        authResp.User.ID,
		Email:     authResp.User.Email,
		FirstName: authResp.User.FirstName,
		LastName:  authResp.User.LastName,
	}, nil
}

// compile-time interface check
var _ Provider = (*WorkOSProvider)(nil)
