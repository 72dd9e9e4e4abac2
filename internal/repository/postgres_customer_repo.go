package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/limitless/adventures/internal/model"
)

// PostgresCustomerRepo はPostgreSQLを使用した顧客リポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// FindByProviderUserID は外部IdPのユーザーIDで顧客を検索する。見つからない場合はnilを返す。
func (r *PostgresCustomerRepo) FindByProviderUserID(ctx context.Context, providerUserID string) (*model.Customer, error) {
	customer := &model.Customer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider_user_id, email, first_name, last_name, created_at
		 FROM customers WHERE provider_user_id = $1`,
		providerUserID,
	).Scan(
		&customer.ID, &customer.ProviderUserID, &customer.Email,
		&customer.FirstName, &customer.LastName, &customer.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by provider user ID: %w", err)
	}

	return customer, nil
}

// Insert は顧客レコードを新規作成する。
func (r *PostgresCustomerRepo) Insert(ctx context.Context, customer *model.Customer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (id, provider_user_id, email, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		customer.ID, customer.ProviderUserID, customer.Email,
		customer.FirstName, customer.LastName, customer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// UpdateProfile は既存顧客のemail・名前のみを更新する。
// provider_user_idとcreated_atは不変。
func (r *PostgresCustomerRepo) UpdateProfile(ctx context.Context, providerUserID, email, firstName, lastName string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers SET email = $2, first_name = $3, last_name = $4
		 WHERE provider_user_id = $1`,
		providerUserID, email, firstName, lastName,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("customer not found: %s", providerUserID)
	}
	return nil
}

// compile-time interface check
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)
