// Package model はドメインモデルを定義する。
package model

// Customer は外部IdPで認証されたユーザーの永続化レコードを表す。
// ProviderUserIDは外部IdPが発行する安定した識別子で、1レコードにつき一意。
type Customer struct {
	ID             string
	ProviderUserID string
	Email          string
	FirstName      string
	LastName       string
	CreatedAt      int64 // エポックミリ秒
}

// SessionClaims はセッショントークンに埋め込むユーザー情報を表す。
// Cookieとして往復するため、機微情報は含めない。
type SessionClaims struct {
	UserID    string // 外部IdPのユーザーID
	Email     string
	FirstName string
	LastName  string
}
