package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"gamestore-api/internal/middleware"
	"gamestore-api/internal/model"
	"gamestore-api/internal/service"

	"github.com/rs/zerolog"
)

// multipartMemoryLimit bounds how much of an upload is held in memory
// before spilling to a temp file.
const multipartMemoryLimit = 10 << 20

// maxRequestBody caps the whole multipart stream: the receipt limit plus
// headroom for the form fields. Oversized uploads are aborted mid-stream
// rather than spooled to disk.
const maxRequestBody = model.MaxReceiptSize + 1<<20

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests. The submission is a multipart
// form with an optional payment_receipt file field. Authentication is
// optional; a valid token attaches the caller's account to the order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeDomainError(w, model.ErrAttachmentTooLarge, "", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", "", h.logger)
		return
	}

	req := &model.CreateOrderRequest{
		OfferID:  strings.TrimSpace(r.FormValue("offer_id")),
		ItemName: strings.TrimSpace(r.FormValue("item_name")),
		Username: strings.TrimSpace(r.FormValue("username")),
	}

	priceStr := strings.TrimSpace(r.FormValue("price"))
	if priceStr == "" {
		writeDomainError(w, model.ErrMissingFields, "", h.logger)
		return
	}
	price, err := strconv.ParseInt(priceStr, 10, 64)
	if err != nil || price < 0 {
		writeDomainError(w, model.ErrMissingFields, "", h.logger)
		return
	}
	req.Price = price

	if bundleStr := r.FormValue("is_bundle"); bundleStr != "" {
		if isBundle, err := strconv.ParseBool(bundleStr); err == nil {
			req.IsBundle = isBundle
		}
	}

	if metadata := r.FormValue("metadata"); metadata != "" {
		req.Metadata = &metadata
	}

	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		userID := identity.UserID
		req.UserID = &userID
	}

	var receipt *model.ReceiptUpload
	file, header, err := r.FormFile("payment_receipt")
	switch {
	case err == nil:
		defer file.Close()
		receipt = &model.ReceiptUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// No receipt attached; the order is still accepted.
	default:
		writeError(w, http.StatusBadRequest, "invalid payment receipt upload", "", h.logger)
		return
	}

	result, err := h.service.Create(r.Context(), req, receipt)
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		writeDomainError(w, err, "Failed to create order. Please try again.", h.logger)
		return
	}

	writeData(w, http.StatusOK, result)
}

// List handles GET /api/orders requests (admin only).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	orders, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve orders", "", h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}

	writeData(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/orders/{id}/status requests (admin only).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	// Expecting path: /api/orders/{id}/status
	rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "status" {
		writeError(w, http.StatusNotFound, "not found", "", h.logger)
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", "", h.logger)
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "", h.logger)
		return
	}

	err = h.service.UpdateStatus(r.Context(), id, &req)
	middleware.RecordOrderOperation("update_status", err == nil)
	if err != nil {
		writeDomainError(w, err, "Failed to update order status", h.logger)
		return
	}

	writeMessage(w, http.StatusOK, "Order status updated successfully")
}

// Receipt handles GET /payment-receipt/{filename} requests (admin only).
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	filename := strings.TrimPrefix(r.URL.Path, "/payment-receipt/")
	if filename == "" {
		writeError(w, http.StatusBadRequest, "receipt filename is required", "", h.logger)
		return
	}

	rc, contentType, err := h.service.GetReceipt(r.Context(), filename)
	if err != nil {
		writeDomainError(w, err, "Failed to retrieve payment receipt", h.logger)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error().Err(err).Str("filename", filename).Msg("failed to stream payment receipt")
	}
}
