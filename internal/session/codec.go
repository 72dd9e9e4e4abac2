// Package session は署名付きセッショントークンの発行と検証を提供する。
// トークンはHS256で署名されたステートレスなベアラー資格情報で、
// サーバー側にセッション状態を保持しない。
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/limitless/adventures/internal/model"
)

// DefaultTokenTTL はセッショントークンの有効期間。発行から7日間固定。
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken は署名不一致・構造破損・期限切れを区別せず表す。
// 呼び出し元はすべて「未認証」として一様に扱う。
var ErrInvalidToken = fmt.Errorf("invalid session token")

// tokenClaims はJWTに埋め込むクレームセット。
type tokenClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.RegisteredClaims
}

// Codec はセッショントークンの署名・検証を行う。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time // テスト用に差し替え可能
}

// NewCodec はCodecを生成する。ttlが0以下の場合はDefaultTokenTTLを使用する。
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint はクレームと発行時刻・有効期限を署名付きトークンにシリアライズする。
// 署名はクレーム全体と有効期限を対象とするため、いかなる改竄も検証で弾かれる。
func (c *Codec) Mint(claims model.SessionClaims) (string, error) {
	now := c.now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、クレームを返す。
// 署名不一致・構造破損・期限切れはすべてErrInvalidTokenとして返す。
func (c *Codec) Verify(token string) (*model.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{},
		func(t *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || tc.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &model.SessionClaims{
		UserID:    tc.Subject,
		Email:     tc.Email,
		FirstName: tc.FirstName,
		LastName:  tc.LastName,
	}, nil
}
