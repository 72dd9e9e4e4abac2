package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/limitless/adventures/internal/flight"
	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/model"
)

// FlightSearcher はフライト検索ハンドラーが必要とするインターフェース。
type FlightSearcher interface {
	Search(ctx context.Context, query flight.SearchQuery) (*flight.SearchResult, error)
}

// FlightHandler はフライト検索のHTTPハンドラー。
type FlightHandler struct {
	searcher FlightSearcher
	metrics  metrics.MetricsCollector
}

// NewFlightHandler はFlightHandlerを生成する。
func NewFlightHandler(searcher FlightSearcher, collector metrics.MetricsCollector) *FlightHandler {
	return &FlightHandler{
		searcher: searcher,
		metrics:  collector,
	}
}

// searchFlightsRequest はフライト検索リクエストのボディ。
type searchFlightsRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartDate  string `json:"departDate"`
	ReturnDate  string `json:"returnDate"`
	Adults      int    `json:"adults"`
}

// SearchFlights はフライト検索を処理する。
// POST /api/flights
// 空港コードは大文字に正規化し、adultsは1〜9の範囲に丸める。
func (h *FlightHandler) SearchFlights(w http.ResponseWriter, r *http.Request) {
	var req searchFlightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Origin == "" || req.Destination == "" || req.DepartDate == "" || req.Adults == 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingSearchFieldsError())
		return
	}

	adults := req.Adults
	if adults < 1 {
		adults = 1
	} else if adults > 9 {
		adults = 9
	}

	start := time.Now()
	result, err := h.searcher.Search(r.Context(), flight.SearchQuery{
		Origin:      strings.ToUpper(req.Origin),
		Destination: strings.ToUpper(req.Destination),
		DepartDate:  req.DepartDate,
		ReturnDate:  req.ReturnDate,
		Adults:      adults,
	})
	h.metrics.RecordSearchLatency(time.Since(start))

	if err != nil {
		h.metrics.RecordSearchFailure("upstream_error")
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewFlightSearchFailedError(""))
		return
	}

	h.metrics.RecordSearchSuccess()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
