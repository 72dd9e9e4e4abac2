package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/limitless/adventures/internal/metrics"
	"github.com/limitless/adventures/internal/middleware"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/trip"
)

// nopMetrics は何も記録しないMetricsCollector実装。
type nopMetrics struct{}

func (nopMetrics) RecordSearchSuccess()                       {}
func (nopMetrics) RecordSearchFailure(reason string)          {}
func (nopMetrics) RecordTripSaved()                           {}
func (nopMetrics) RecordTripDeleted()                         {}
func (nopMetrics) RecordCheckoutCreated()                     {}
func (nopMetrics) RecordCheckoutFailure()                     {}
func (nopMetrics) RecordLoginSuccess()                        {}
func (nopMetrics) RecordHTTPStatus(statusCode int)            {}
func (nopMetrics) RecordSearchLatency(duration time.Duration) {}

var _ metrics.MetricsCollector = nopMetrics{}

// mockTripService はTripServiceInterfaceのモック。
type mockTripService struct {
	saveFn     func(ctx context.Context, ownerID string, input trip.SaveInput) (string, error)
	listMineFn func(ctx context.Context, ownerID string) ([]*model.SavedTrip, error)
	deleteFn   func(ctx context.Context, ownerID, tripID string) error
}

func (m *mockTripService) Save(ctx context.Context, ownerID string, input trip.SaveInput) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, ownerID, input)
	}
	return "", errors.New("not implemented")
}

func (m *mockTripService) ListMine(ctx context.Context, ownerID string) ([]*model.SavedTrip, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, ownerID)
	}
	return []*model.SavedTrip{}, nil
}

func (m *mockTripService) Delete(ctx context.Context, ownerID, tripID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, tripID)
	}
	return nil
}

var _ TripServiceInterface = (*mockTripService)(nil)

func authedContext(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithClaims(r.Context(), &model.SessionClaims{UserID: userID})
	return r.WithContext(ctx)
}

func TestSaveTrip_Success(t *testing.T) {
	service := &mockTripService{
		saveFn: func(ctx context.Context, ownerID string, input trip.SaveInput) (string, error) {
			if ownerID != "U1" {
				t.Errorf("ownerID = %q, want U1", ownerID)
			}
			if input.Origin != "JFK" || input.Destination != "CDG" {
				t.Errorf("input = %+v", input)
			}
			return "trip-1", nil
		},
	}
	h := NewTripHandler(service, nopMetrics{})

	body := `{"origin":"JFK","destination":"CDG","departDate":"2025-06-01","adults":2}`
	req := authedContext(httptest.NewRequest(http.MethodPost, "/api/trips/save", strings.NewReader(body)), "U1")
	rec := httptest.NewRecorder()

	h.SaveTrip(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if resp["success"] != true {
		t.Error("expected success = true")
	}
	if resp["tripId"] != "trip-1" {
		t.Errorf("tripId = %v, want trip-1", resp["tripId"])
	}
}

func TestSaveTrip_InvalidJSON(t *testing.T) {
	h := NewTripHandler(&mockTripService{}, nopMetrics{})

	req := authedContext(httptest.NewRequest(http.MethodPost, "/api/trips/save", strings.NewReader("{broken")), "U1")
	rec := httptest.NewRecorder()

	h.SaveTrip(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSaveTrip_ValidationError_400(t *testing.T) {
	service := &mockTripService{
		saveFn: func(ctx context.Context, ownerID string, input trip.SaveInput) (string, error) {
			return "", model.NewMissingTripFieldsError()
		},
	}
	h := NewTripHandler(service, nopMetrics{})

	req := authedContext(httptest.NewRequest(http.MethodPost, "/api/trips/save", strings.NewReader(`{"origin":"JFK"}`)), "U1")
	rec := httptest.NewRecorder()

	h.SaveTrip(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var body middleware.ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if body.Code != model.ErrCodeMissingTripFields {
		t.Errorf("error code = %q, want %q", body.Code, model.ErrCodeMissingTripFields)
	}
}

func TestSaveTrip_NoClaims_Unauthorized(t *testing.T) {
	h := NewTripHandler(&mockTripService{}, nopMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/api/trips/save", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.SaveTrip(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListTrips_ReturnsTrips(t *testing.T) {
	ret := "2025-06-10"
	service := &mockTripService{
		listMineFn: func(ctx context.Context, ownerID string) ([]*model.SavedTrip, error) {
			return []*model.SavedTrip{
				{ID: "t2", OwnerID: ownerID, Origin: "JFK", Destination: "CDG", DepartDate: "2025-06-01", ReturnDate: &ret, Adults: 2, SavedAt: 2000},
				{ID: "t1", OwnerID: ownerID, Origin: "LAX", Destination: "NRT", DepartDate: "2025-05-01", Adults: 1, SavedAt: 1000},
			}, nil
		},
	}
	h := NewTripHandler(service, nopMetrics{})

	req := authedContext(httptest.NewRequest(http.MethodGet, "/api/trips", nil), "U1")
	rec := httptest.NewRecorder()

	h.ListTrips(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Trips []tripResponse `json:"trips"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if len(resp.Trips) != 2 {
		t.Fatalf("len(trips) = %d, want 2", len(resp.Trips))
	}
	if resp.Trips[0].ID != "t2" {
		t.Errorf("trips[0].ID = %q, want t2 (newest first)", resp.Trips[0].ID)
	}
	if resp.Trips[0].ReturnDate == nil || *resp.Trips[0].ReturnDate != "2025-06-10" {
		t.Error("expected returnDate to be carried through")
	}
}

func TestListTrips_Empty_ReturnsEmptyArray(t *testing.T) {
	h := NewTripHandler(&mockTripService{}, nopMetrics{})

	req := authedContext(httptest.NewRequest(http.MethodGet, "/api/trips", nil), "U1")
	rec := httptest.NewRecorder()

	h.ListTrips(rec, req)

	if !strings.Contains(rec.Body.String(), `"trips":[]`) {
		t.Errorf("body = %s, want empty trips array (not null)", rec.Body.String())
	}
}

func TestDeleteTrip_Success(t *testing.T) {
	service := &mockTripService{
		deleteFn: func(ctx context.Context, ownerID, tripID string) error {
			if ownerID != "U1" || tripID != "trip-1" {
				t.Errorf("Delete(%q, %q)", ownerID, tripID)
			}
			return nil
		},
	}
	h := NewTripHandler(service, nopMetrics{})

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "trip-1")
	req := authedContext(httptest.NewRequest(http.MethodDelete, "/api/trips/trip-1", nil), "U1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.DeleteTrip(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

// 存在しないトリップと他人のトリップは等しく404になる。
func TestDeleteTrip_NotFound_404(t *testing.T) {
	service := &mockTripService{
		deleteFn: func(ctx context.Context, ownerID, tripID string) error {
			return model.NewTripNotFoundError(tripID)
		},
	}
	h := NewTripHandler(service, nopMetrics{})

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req := authedContext(httptest.NewRequest(http.MethodDelete, "/api/trips/missing", nil), "U1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.DeleteTrip(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
