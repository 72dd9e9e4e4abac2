// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, trip, external, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeMissingTripFields     = "MISSING_TRIP_FIELDS"
	ErrCodeTripNotFound          = "TRIP_NOT_FOUND"
	ErrCodeMissingSearchFields   = "MISSING_SEARCH_FIELDS"
	ErrCodeFlightSearchFailed    = "FLIGHT_SEARCH_FAILED"
	ErrCodeMissingCheckoutFields = "MISSING_CHECKOUT_FIELDS"
	ErrCodeCheckoutFailed        = "CHECKOUT_FAILED"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewMissingTripFieldsError はトリップ保存の必須項目欠落エラーを生成する。
func NewMissingTripFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingTripFields,
		Message:  "必須項目が不足しています: origin, destination, departDate",
		Category: "validation",
		Action:   "出発地・目的地・出発日をすべて指定してください。",
	}
}

// NewTripNotFoundError は保存済みトリップが見つからない場合のエラーを生成する。
func NewTripNotFoundError(tripID string) *APIError {
	return &APIError{
		Code:     ErrCodeTripNotFound,
		Message:  fmt.Sprintf("指定されたトリップが見つかりません: %s", tripID),
		Category: "trip",
		Action:   "保存済みトリップの一覧を確認してください。",
	}
}

// NewMissingSearchFieldsError はフライト検索の必須項目欠落エラーを生成する。
func NewMissingSearchFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingSearchFields,
		Message:  "必須項目が不足しています: origin, destination, departDate, adults",
		Category: "validation",
		Action:   "出発地・目的地・出発日・人数をすべて指定してください。",
	}
}

// NewFlightSearchFailedError はフライト検索API呼び出し失敗エラーを生成する。
// detailには外部プロバイダーからのエラー詳細を渡す（取得できない場合は空文字）。
func NewFlightSearchFailedError(detail string) *APIError {
	msg := "フライト検索に失敗しました。"
	if detail != "" {
		msg = fmt.Sprintf("フライト検索に失敗しました: %s", detail)
	}
	return &APIError{
		Code:     ErrCodeFlightSearchFailed,
		Message:  msg,
		Category: "external",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewMissingCheckoutFieldsError は決済セッション作成の必須項目欠落エラーを生成する。
func NewMissingCheckoutFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingCheckoutFields,
		Message:  "必須項目が不足しています: serviceName, priceInCents",
		Category: "validation",
		Action:   "サービス名と金額を指定してください。",
	}
}

// NewCheckoutFailedError は決済セッション作成失敗エラーを生成する。
func NewCheckoutFailedError(detail string) *APIError {
	msg := "決済セッションの作成に失敗しました。"
	if detail != "" {
		msg = fmt.Sprintf("決済セッションの作成に失敗しました: %s", detail)
	}
	return &APIError{
		Code:     ErrCodeCheckoutFailed,
		Message:  msg,
		Category: "external",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
