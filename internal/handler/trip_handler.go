package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/middleware"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/trip"
)

// TripServiceInterface はトリップハンドラーが必要とするサービスインターフェース。
type TripServiceInterface interface {
	// Save はトリップを保存し、新規IDを返す。
	Save(ctx context.Context, ownerID string, input trip.SaveInput) (string, error)
	// ListMine は呼び出し元のトリップ一覧を保存日時の新しい順で返す。
	ListMine(ctx context.Context, ownerID string) ([]*model.SavedTrip, error)
	// Delete は呼び出し元が所有するトリップを削除する。
	Delete(ctx context.Context, ownerID, tripID string) error
}

// TripHandler は保存済みトリップのHTTPハンドラー。
type TripHandler struct {
	service TripServiceInterface
	metrics metrics.MetricsCollector
}

// NewTripHandler はTripHandlerを生成する。
func NewTripHandler(service TripServiceInterface, collector metrics.MetricsCollector) *TripHandler {
	return &TripHandler{
		service: service,
		metrics: collector,
	}
}

// saveTripRequest はトリップ保存リクエストのボディ。
type saveTripRequest struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartDate    string  `json:"departDate"`
	ReturnDate    *string `json:"returnDate"`
	Adults        int     `json:"adults"`
	CheapestPrice *string `json:"cheapestPrice"`
	Currency      *string `json:"currency"`
	Airline       *string `json:"airline"`
	Stops         *int    `json:"stops"`
}

// tripResponse は保存済みトリップのAPIレスポンス。
type tripResponse struct {
	ID            string  `json:"id"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartDate    string  `json:"departDate"`
	ReturnDate    *string `json:"returnDate,omitempty"`
	Adults        int     `json:"adults"`
	CheapestPrice *string `json:"cheapestPrice,omitempty"`
	Currency      *string `json:"currency,omitempty"`
	Airline       *string `json:"airline,omitempty"`
	Stops         *int    `json:"stops,omitempty"`
	SavedAt       int64   `json:"savedAt"`
}

// SaveTrip はトリップ保存を処理する。
// POST /api/trips/save
func (h *TripHandler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req saveTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	tripID, err := h.service.Save(r.Context(), claims.UserID, trip.SaveInput{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartDate:    req.DepartDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Adults,
		CheapestPrice: req.CheapestPrice,
		Currency:      req.Currency,
		Airline:       req.Airline,
		Stops:         req.Stops,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTripSaved()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"tripId":  tripID,
	})
}

// ListTrips は呼び出し元の保存済みトリップ一覧を返す。
// GET /api/trips
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	trips, err := h.service.ListMine(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]tripResponse, len(trips))
	for i, t := range trips {
		results[i] = toTripResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"trips": results,
	})
}

// DeleteTrip はトリップ削除を処理する。
// DELETE /api/trips/:id
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.ClaimsFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	tripID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), claims.UserID, tripID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTripDeleted()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
	})
}

// toTripResponse はドメインのSavedTripをAPIレスポンス型に変換する。
func toTripResponse(t *model.SavedTrip) tripResponse {
	return tripResponse{
		ID:            t.ID,
		Origin:        t.Origin,
		Destination:   t.Destination,
		DepartDate:    t.DepartDate,
		ReturnDate:    t.ReturnDate,
		Adults:        t.Adults,
		CheapestPrice: t.CheapestPrice,
		Currency:      t.Currency,
		Airline:       t.Airline,
		Stops:         t.Stops,
		SavedAt:       t.SavedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest,
		model.ErrCodeMissingTripFields,
		model.ErrCodeMissingSearchFields,
		model.ErrCodeMissingCheckoutFields:
		return http.StatusBadRequest
	case model.ErrCodeTripNotFound:
		return http.StatusNotFound
	case model.ErrCodeFlightSearchFailed, model.ErrCodeCheckoutFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
