// Package auth は外部IdPによる認証フローとアイデンティティの突合を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/repository"
)

// ProviderUser は外部IdPから取得した検証済みユーザー情報を表す。
type ProviderUser struct {
	ID        string // 外部IdPが発行する安定した識別子
	Email     string
	FirstName string
	LastName  string
}

// Provider は外部IdPのインターフェース。
type Provider interface {
	// GetLoginURL は認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードを検証済みユーザー情報に交換する。
	ExchangeCode(ctx context.Context, code string) (*ProviderUser, error)
}

// TokenMinter はセッショントークンの発行インターフェース。
// session.Codecの部分集合として定義する。
type TokenMinter interface {
	Mint(claims model.SessionClaims) (string, error)
}

// Service は認証コールバックの処理とアイデンティティの突合を提供する。
type Service struct {
	provider  Provider
	customers repository.CustomerRepository
	minter    TokenMinter
}

// NewService はServiceを生成する。
func NewService(provider Provider, customers repository.CustomerRepository, minter TokenMinter) *Service {
	return &Service{
		provider:  provider,
		customers: customers,
		minter:    minter,
	}
}

// GetLoginURL は外部IdPの認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.provider.GetLoginURL(state)
}

// HandleCallback は認証コールバックを処理し、セッショントークンを発行する。
// 顧客レコードのupsertはベストエフォートで行う: 永続化に失敗しても
// ログイン自体は成功させ、エラーはログに記録するだけで呼び出し元には返さない。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *model.SessionClaims, error) {
	// 1. 認可コードを検証済みユーザー情報に交換
	user, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	// 2. 顧客レコードのupsert（ベストエフォート）
	if err := s.upsertCustomer(ctx, user); err != nil {
		slog.Error("best-effort customer upsert failed, continuing login",
			slog.String("provider_user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	// 3. セッショントークンを発行（upsertの成否とは独立）
	claims := model.SessionClaims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	token, err := s.minter.Mint(claims)
	if err != nil {
		return "", nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("provider_user_id", user.ID),
	)

	return token, &claims, nil
}

// upsertCustomer は外部IdPのユーザーIDで顧客を検索し、
// 存在すればemail・名前のみを更新、存在しなければ新規作成する。
// 参照IDと作成時刻は不変。
func (s *Service) upsertCustomer(ctx context.Context, user *ProviderUser) error {
	existing, err := s.customers.FindByProviderUserID(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to find customer: %w", err)
	}

	if existing != nil {
		if err := s.customers.UpdateProfile(ctx, user.ID, user.Email, user.FirstName, user.LastName); err != nil {
			return fmt.Errorf("failed to update customer profile: %w", err)
		}
		return nil
	}

	customer := &model.Customer{
		ID:             uuid.New().String(),
		ProviderUserID: user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		CreatedAt:      time.Now().UnixMilli(),
	}
	if err := s.customers.Insert(ctx, customer); err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	slog.Info("new customer created",
		slog.String("provider_user_id", user.ID),
		slog.String("email", user.Email),
	)
	return nil
}
