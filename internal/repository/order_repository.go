package repository

import (
	"context"
	"errors"
	"fmt"

	"gamestore-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db DB, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		db:     db,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, user_id, username, offer_id, item_name, price, is_bundle,
		status, metadata, error_message, payment_receipt, created_at, updated_at`

// Insert persists a new order and returns its assigned identifier.
func (r *orderRepository) Insert(ctx context.Context, order *model.Order) (int64, error) {
	query := `
		INSERT INTO fortnite_orders
			(user_id, username, offer_id, item_name, price, is_bundle,
			 status, metadata, payment_receipt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		order.UserID,
		order.Username,
		order.OfferID,
		order.ItemName,
		order.Price,
		order.IsBundle,
		order.Status,
		order.Metadata,
		order.PaymentReceipt,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("offer_id", order.OfferID).
			Str("username", order.Username).
			Msg("failed to insert order")
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", id).
		Msg("order inserted successfully")

	return id, nil
}

// GetByID retrieves an order by its identifier.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM fortnite_orders WHERE id = $1`, orderColumns)

	var order model.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Username,
		&order.OfferID,
		&order.ItemName,
		&order.Price,
		&order.IsBundle,
		&order.Status,
		&order.Metadata,
		&order.ErrorMessage,
		&order.PaymentReceipt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return &order, nil
}

// List retrieves all orders, most recent first.
func (r *orderRepository) List(ctx context.Context) ([]model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM fortnite_orders ORDER BY created_at DESC`, orderColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var order model.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Username,
			&order.OfferID,
			&order.ItemName,
			&order.Price,
			&order.IsBundle,
			&order.Status,
			&order.Metadata,
			&order.ErrorMessage,
			&order.PaymentReceipt,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets status, error_message and updated_at on the matching order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus, errorMessage *string) (int64, error) {
	query := `
		UPDATE fortnite_orders
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, status, errorMessage, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", id).
			Str("status", string(status)).
			Msg("failed to update order status")
		return 0, fmt.Errorf("failed to update order status: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", id).
		Str("status", string(status)).
		Int64("rows_affected", tag.RowsAffected()).
		Msg("order status updated")

	return tag.RowsAffected(), nil
}
