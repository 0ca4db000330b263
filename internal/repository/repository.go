package repository

import (
	"context"

	"gamestore-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories need. Keeping it
// narrow lets unit tests substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Insert persists a new order and returns its assigned identifier.
	Insert(ctx context.Context, order *model.Order) (int64, error)

	// GetByID retrieves a single order by its identifier. Returns nil
	// without error when no order matches.
	GetByID(ctx context.Context, id int64) (*model.Order, error)

	// List retrieves all orders, most recent first.
	List(ctx context.Context) ([]model.Order, error)

	// UpdateStatus sets status, error_message and updated_at on the
	// matching order and returns the number of rows affected.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, errorMessage *string) (int64, error)
}

// SettingsRepository defines the interface for settings and rate-history
// data access operations.
type SettingsRepository interface {
	// GetSetting retrieves a setting by key. Returns nil without error
	// when the key is absent.
	GetSetting(ctx context.Context, key string) (*model.Setting, error)

	// SetSetting upserts a setting value.
	SetSetting(ctx context.Context, key, value string) error

	// InsertRateHistory appends a V-Bucks rate change record.
	InsertRateHistory(ctx context.Context, rate float64, createdBy *int64) error

	// ListRateHistory retrieves all rate changes, most recent first.
	ListRateHistory(ctx context.Context) ([]model.RateHistoryEntry, error)
}
