// Package trip は保存済みトリップのCRUDビジネスロジックを提供する。
package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/limitless/adventures/internal/model"
	"github.com/limitless/adventures/internal/repository"
)

// SaveInput はトリップ保存の入力。
// Origin、Destination、DepartDateは必須。それ以外は任意項目。
type SaveInput struct {
	Origin        string
	Destination   string
	DepartDate    string
	ReturnDate    *string
	Adults        int
	CheapestPrice *string
	Currency      *string
	Airline       *string
	Stops         *int
}

// Service は保存済みトリップに関するビジネスロジックを提供する。
// すべての操作は認証済み呼び出し元の外部IdPユーザーIDでスコープされる。
type Service struct {
	trips repository.TripRepository
}

// NewService はServiceを生成する。
func NewService(trips repository.TripRepository) *Service {
	return &Service{trips: trips}
}

// Save はトリップを保存し、新規IDを返す。
// 必須項目が欠落している場合は書き込みを行わずバリデーションエラーを返す。
// Adultsが正の整数でない場合は1として扱う。
func (s *Service) Save(ctx context.Context, ownerID string, input SaveInput) (string, error) {
	if input.Origin == "" || input.Destination == "" || input.DepartDate == "" {
		return "", model.NewMissingTripFieldsError()
	}

	adults := input.Adults
	if adults <= 0 {
		adults = 1
	}

	saved := &model.SavedTrip{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartDate:    input.DepartDate,
		ReturnDate:    input.ReturnDate,
		Adults:        adults,
		CheapestPrice: input.CheapestPrice,
		Currency:      input.Currency,
		Airline:       input.Airline,
		Stops:         input.Stops,
		SavedAt:       time.Now().UnixMilli(),
	}

	if err := s.trips.Insert(ctx, saved); err != nil {
		return "", fmt.Errorf("failed to save trip: %w", err)
	}

	return saved.ID, nil
}

// ListMine は呼び出し元のトリップ一覧を保存日時の新しい順で返す。
// 1件も存在しない場合はエラーではなく空スライスを返す。
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]*model.SavedTrip, error) {
	trips, err := s.trips.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// Delete は指定IDのトリップを削除する。
// 削除前に所有者を照合し、呼び出し元以外のトリップと存在しないIDは
// 区別せずnot foundとして扱う（所有状況を漏らさない）。
func (s *Service) Delete(ctx context.Context, ownerID, tripID string) error {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("failed to find trip: %w", err)
	}
	if trip == nil || trip.OwnerID != ownerID {
		return model.NewTripNotFoundError(tripID)
	}

	if err := s.trips.DeleteByID(ctx, tripID); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	return nil
}
