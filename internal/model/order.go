package model

import (
	"io"
	"time"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

// Valid order statuses.
const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusFailed    OrderStatus = "failed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// MaxReceiptSize is the upper bound for uploaded receipt images (5 MiB).
const MaxReceiptSize = 5 * 1024 * 1024

// Order represents a purchase request for a digital item, paid via manual
// bank transfer with an optional uploaded receipt image as proof.
type Order struct {
	ID             int64       `json:"id" db:"id"`
	UserID         *int64      `json:"user_id" db:"user_id"`
	Username       string      `json:"username" db:"username"`
	OfferID        string      `json:"offer_id" db:"offer_id"`
	ItemName       string      `json:"item_name" db:"item_name"`
	Price          int64       `json:"price" db:"price"`
	IsBundle       bool        `json:"is_bundle" db:"is_bundle"`
	Status         OrderStatus `json:"status" db:"status"`
	Metadata       *string     `json:"metadata" db:"metadata"`
	ErrorMessage   *string     `json:"error_message" db:"error_message"`
	PaymentReceipt *string     `json:"payment_receipt" db:"payment_receipt"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateOrderRequest represents an order submission. UserID is set only
// when the submitting client carried a valid auth token.
type CreateOrderRequest struct {
	OfferID  string
	ItemName string
	Price    int64
	Username string
	IsBundle bool
	Metadata *string
	UserID   *int64
}

// ReceiptUpload describes an uploaded payment-proof image before it is
// persisted to receipt storage.
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UpdateStatusRequest represents the request payload for updating an order's status.
type UpdateStatusRequest struct {
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// CreateOrderResult is the payload returned after a successful order submission.
type CreateOrderResult struct {
	Order          *Order  `json:"order"`
	Message        string  `json:"message"`
	PaymentReceipt *string `json:"payment_receipt"`
}
