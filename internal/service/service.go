package service

import (
	"context"
	"io"

	"gamestore-api/internal/model"
)

// OrderService defines the business operations for the order lifecycle.
type OrderService interface {
	// Create validates an order submission, persists the receipt image if
	// present and inserts the order with status pending.
	Create(ctx context.Context, req *model.CreateOrderRequest, receipt *model.ReceiptUpload) (*model.CreateOrderResult, error)

	// List retrieves all orders, most recent first.
	List(ctx context.Context) ([]model.Order, error)

	// UpdateStatus transitions an order to the given status, setting or
	// clearing its error message.
	UpdateStatus(ctx context.Context, id int64, req *model.UpdateStatusRequest) error

	// GetReceipt streams a stored payment receipt and its content type.
	GetReceipt(ctx context.Context, filename string) (io.ReadCloser, string, error)
}

// SettingsService defines operations on store-wide settings.
type SettingsService interface {
	// VbucksRate returns the current V-Bucks exchange rate.
	VbucksRate(ctx context.Context) (float64, error)

	// UpdateVbucksRate sets a new rate and records who changed it.
	UpdateVbucksRate(ctx context.Context, rate float64, updatedBy *int64) error

	// RateHistory returns all recorded rate changes, most recent first.
	RateHistory(ctx context.Context) ([]model.RateHistoryEntry, error)
}
