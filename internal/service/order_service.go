package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gamestore-api/internal/model"
	"gamestore-api/internal/repository"
	"gamestore-api/internal/storage"

	"github.com/rs/zerolog"
)

// receiptPathPrefix is the externally addressable path under which stored
// receipts are served.
const receiptPathPrefix = "/payment-receipt/"

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	receipts  storage.ReceiptStore
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	receipts storage.ReceiptStore,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		receipts:  receipts,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Create validates an order submission, persists the receipt image if
// present and inserts the order with status pending. Any failure after the
// receipt has been written triggers a best-effort compensating delete.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest, receipt *model.ReceiptUpload) (*model.CreateOrderResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if receipt != nil {
		if !strings.HasPrefix(receipt.ContentType, "image/") {
			s.logger.Warn().
				Str("content_type", receipt.ContentType).
				Str("username", req.Username).
				Msg("rejected non-image payment receipt")
			return nil, model.ErrInvalidAttachment
		}
		if receipt.Size > model.MaxReceiptSize {
			s.logger.Warn().
				Int64("size", receipt.Size).
				Str("username", req.Username).
				Msg("rejected oversized payment receipt")
			return nil, model.ErrAttachmentTooLarge
		}
	}

	// Persist the receipt before the insert so an insert failure always has
	// a known file to clean up.
	var receiptPath *string
	var receiptName string
	if receipt != nil {
		receiptName = storage.NewReceiptFilename(receipt.Filename)
		if err := s.receipts.Save(ctx, receiptName, receipt.ContentType, receipt.Content); err != nil {
			s.logger.Error().Err(err).Str("filename", receiptName).Msg("failed to store payment receipt")
			return nil, fmt.Errorf("failed to store payment receipt: %w", err)
		}
		path := receiptPathPrefix + receiptName
		receiptPath = &path
	}

	now := time.Now()
	order := &model.Order{
		UserID:         req.UserID,
		Username:       req.Username,
		OfferID:        req.OfferID,
		ItemName:       req.ItemName,
		Price:          req.Price,
		IsBundle:       req.IsBundle,
		Status:         model.StatusPending,
		Metadata:       normalizeMetadata(req.Metadata),
		PaymentReceipt: receiptPath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.orderRepo.Insert(ctx, order)
	if err != nil {
		s.cleanupReceipt(ctx, receiptName)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Re-read the inserted row to confirm persistence.
	persisted, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.cleanupReceipt(ctx, receiptName)
		return nil, fmt.Errorf("failed to verify order: %w", err)
	}
	if persisted == nil {
		s.logger.Error().Int64("order_id", id).Msg("inserted order could not be re-fetched")
		s.cleanupReceipt(ctx, receiptName)
		return nil, model.ErrPersistence
	}

	s.logger.Info().
		Int64("order_id", persisted.ID).
		Str("offer_id", persisted.OfferID).
		Str("username", persisted.Username).
		Bool("has_receipt", receiptPath != nil).
		Msg("order created successfully")

	return &model.CreateOrderResult{
		Order:          persisted,
		Message:        "Order created successfully! Your purchase is being processed.",
		PaymentReceipt: receiptPath,
	}, nil
}

// List retrieves all orders, most recent first.
func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order to the given status. A status outside
// the known lifecycle states is rejected before any mutation; a missing
// order id surfaces as not-found rather than silently succeeding.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, req *model.UpdateStatusRequest) error {
	status := model.OrderStatus(req.Status)
	if !status.Valid() {
		s.logger.Warn().
			Int64("order_id", id).
			Str("status", req.Status).
			Msg("rejected invalid order status")
		return model.ErrInvalidStatus
	}

	rows, err := s.orderRepo.UpdateStatus(ctx, id, status, req.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if rows == 0 {
		s.logger.Warn().Int64("order_id", id).Msg("status update matched no order")
		return model.ErrOrderNotFound
	}

	s.logger.Info().
		Int64("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return nil
}

// GetReceipt streams a stored payment receipt and its content type.
func (s *orderService) GetReceipt(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	rc, contentType, err := s.receipts.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug().Str("filename", filename).Msg("payment receipt not found")
			return nil, "", model.ErrReceiptNotFound
		}
		s.logger.Error().Err(err).Str("filename", filename).Msg("failed to open payment receipt")
		return nil, "", fmt.Errorf("failed to open payment receipt: %w", err)
	}
	return rc, contentType, nil
}

// validateRequest enforces the required-field rules for a submission.
func (s *orderService) validateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.ErrMissingFields
	}
	if req.OfferID == "" || req.ItemName == "" || req.Username == "" {
		s.logger.Warn().
			Bool("has_offer_id", req.OfferID != "").
			Bool("has_item_name", req.ItemName != "").
			Bool("has_username", req.Username != "").
			Msg("order submission missing required fields")
		return model.ErrMissingFields
	}
	if req.Price < 0 {
		return model.ErrMissingFields
	}
	return nil
}

// cleanupReceipt deletes a stored receipt after a failed submission. The
// delete is best-effort; failures are logged, not reported.
func (s *orderService) cleanupReceipt(ctx context.Context, filename string) {
	if filename == "" {
		return
	}
	if err := s.receipts.Delete(ctx, filename); err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("failed to delete orphaned payment receipt")
	}
}

// normalizeMetadata serializes the submitted metadata value. Values that
// are already valid JSON are stored verbatim; anything else is stored as a
// JSON string.
func normalizeMetadata(metadata *string) *string {
	if metadata == nil || *metadata == "" {
		return nil
	}
	if json.Valid([]byte(*metadata)) {
		return metadata
	}
	encoded, err := json.Marshal(*metadata)
	if err != nil {
		return nil
	}
	s := string(encoded)
	return &s
}
