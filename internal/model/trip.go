package model

// SavedTrip は保存されたフライト料金見積もりを表す。
// OwnerIDは外部IdPのユーザーIDで、全ての参照・削除操作はこのIDでスコープされる。
// レコードは作成と削除のみで、更新されることはない。
type SavedTrip struct {
	ID            string
	OwnerID       string
	Origin        string // IATA空港コード
	Destination   string // IATA空港コード
	DepartDate    string // "YYYY-MM-DD"
	ReturnDate    *string
	Adults        int
	CheapestPrice *string
	Currency      *string
	Airline       *string
	Stops         *int
	SavedAt       int64 // エポックミリ秒
}
