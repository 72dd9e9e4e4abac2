// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/limitless/adventures/internal/model"
)

// CustomerRepository は顧客レコードの永続化インターフェース。
// 外部IdPのユーザーID（provider_user_id）がユニークキーとなる。
type CustomerRepository interface {
	// FindByProviderUserID は外部IdPのユーザーIDで顧客を検索する。
	// 見つからない場合はnilを返す。
	FindByProviderUserID(ctx context.Context, providerUserID string) (*model.Customer, error)

	// Insert は顧客レコードを新規作成する。
	Insert(ctx context.Context, customer *model.Customer) error

	// UpdateProfile は既存顧客のemail・名前のみを更新する。
	// provider_user_idとcreated_atは変更しない。
	UpdateProfile(ctx context.Context, providerUserID, email, firstName, lastName string) error
}

// TripRepository は保存済みトリップの永続化インターフェース。
type TripRepository interface {
	// Insert はトリップを新規作成する。
	Insert(ctx context.Context, trip *model.SavedTrip) error

	// ListByOwner は所有者のトリップ一覧をsaved_at降順で返す。
	// 存在しない場合は空スライスを返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.SavedTrip, error)

	// FindByID は指定IDのトリップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.SavedTrip, error)

	// DeleteByID は指定IDのトリップを削除する。
	// 該当行が存在しなくてもエラーにはしない。
	DeleteByID(ctx context.Context, id string) error
}
