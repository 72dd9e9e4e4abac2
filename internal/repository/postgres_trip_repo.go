package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/limitless/adventures/internal/model"
)

// PostgresTripRepo はPostgreSQLを使用した保存済みトリップリポジトリ。
type PostgresTripRepo struct {
	db *sql.DB
}

// NewPostgresTripRepo はPostgresTripRepoを生成する。
func NewPostgresTripRepo(db *sql.DB) *PostgresTripRepo {
	return &PostgresTripRepo{db: db}
}

// Insert はトリップを新規作成する。
func (r *PostgresTripRepo) Insert(ctx context.Context, trip *model.SavedTrip) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_trips
		 (id, owner_id, origin, destination, depart_date, return_date,
		  adults, cheapest_price, currency, airline, stops, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		trip.ID, trip.OwnerID, trip.Origin, trip.Destination, trip.DepartDate,
		trip.ReturnDate, trip.Adults, trip.CheapestPrice, trip.Currency,
		trip.Airline, trip.Stops, trip.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert saved trip: %w", err)
	}
	return nil
}

// ListByOwner は所有者のトリップ一覧をsaved_at降順で返す。
func (r *PostgresTripRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.SavedTrip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, origin, destination, depart_date, return_date,
		        adults, cheapest_price, currency, airline, stops, saved_at
		 FROM saved_trips
		 WHERE owner_id = $1
		 ORDER BY saved_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved trips: %w", err)
	}
	defer rows.Close()

	trips := []*model.SavedTrip{}
	for rows.Next() {
		trip := &model.SavedTrip{}
		if err := rows.Scan(
			&trip.ID, &trip.OwnerID, &trip.Origin, &trip.Destination,
			&trip.DepartDate, &trip.ReturnDate, &trip.Adults,
			&trip.CheapestPrice, &trip.Currency, &trip.Airline,
			&trip.Stops, &trip.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved trips: %w", err)
	}

	return trips, nil
}

// FindByID は指定IDのトリップを取得する。見つからない場合はnilを返す。
func (r *PostgresTripRepo) FindByID(ctx context.Context, id string) (*model.SavedTrip, error) {
	trip := &model.SavedTrip{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, origin, destination, depart_date, return_date,
		        adults, cheapest_price, currency, airline, stops, saved_at
		 FROM saved_trips WHERE id = $1`,
		id,
	).Scan(
		&trip.ID, &trip.OwnerID, &trip.Origin, &trip.Destination,
		&trip.DepartDate, &trip.ReturnDate, &trip.Adults,
		&trip.CheapestPrice, &trip.Currency, &trip.Airline,
		&trip.Stops, &trip.SavedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find saved trip by ID: %w", err)
	}

	return trip, nil
}

// DeleteByID は指定IDのトリップを削除する。該当行が存在しなくてもエラーにはしない。
func (r *PostgresTripRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_trips WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete saved trip: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TripRepository = (*PostgresTripRepo)(nil)
