package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/payment"
)

// defaultCheckoutOrigin はOriginヘッダーが無い場合のリダイレクト基点URL。
const defaultCheckoutOrigin = "http://localhost:5173"

// CheckoutCreator は決済ハンドラーが必要とするインターフェース。
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, input payment.CheckoutInput) (*payment.CheckoutSession, error)
}

// CheckoutHandler は決済セッション作成のHTTPハンドラー。
type CheckoutHandler struct {
	creator CheckoutCreator
	metrics metrics.MetricsCollector
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(creator CheckoutCreator, collector metrics.MetricsCollector) *CheckoutHandler {
	return &CheckoutHandler{
		creator: creator,
		metrics: collector,
	}
}

// createCheckoutRequest は決済セッション作成リクエストのボディ。
type createCheckoutRequest struct {
	ServiceName  string `json:"serviceName"`
	ServiceID    string `json:"serviceId"`
	Description  string `json:"description"`
	PriceInCents int64  `json:"priceInCents"`
}

// CreateCheckout は決済セッション作成を処理する。
// POST /api/checkout
// 成功/キャンセル時のリダイレクト先はリクエストのOriginヘッダーから導出する。
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.ServiceName == "" || req.PriceInCents <= 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingCheckoutFieldsError())
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = defaultCheckoutOrigin
	}

	session, err := h.creator.CreateCheckoutSession(r.Context(), payment.CheckoutInput{
		ServiceName:  req.ServiceName,
		ServiceID:    req.ServiceID,
		Description:  req.Description,
		PriceInCents: req.PriceInCents,
		Origin:       origin,
	})
	if err != nil {
		h.metrics.RecordCheckoutFailure()
		writeAPIErrorResponse(w, http.StatusBadGateway, model.NewCheckoutFailedError(""))
		return
	}

	h.metrics.RecordCheckoutCreated()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"url":       session.URL,
		"sessionId": session.ID,
	})
}
