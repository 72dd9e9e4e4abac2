package model

// FlightOffer はフライト検索APIから取得したオファー1件を平坦化した結果を表す。
type FlightOffer struct {
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	Airline       string `json:"airline"`
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Stops         int    `json:"stops"`
	Duration      string `json:"duration"` // ISO 8601 duration（例: "PT7H25M"）
	Itineraries   int    `json:"itineraries"`
}
