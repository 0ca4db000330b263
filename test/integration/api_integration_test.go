package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"gamestore-api/internal/auth"
	"gamestore-api/internal/handler"
	"gamestore-api/internal/model"
	"gamestore-api/internal/repository"
	"gamestore-api/internal/router"
	"gamestore-api/internal/service"
	"gamestore-api/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "integration-test-secret"

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	settingsRepo := repository.NewSettingsRepository(testDB.Pool, logger)

	// Receipt storage backed by a temp directory
	receipts, err := storage.NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)

	// Initialize services
	orderService := service.NewOrderService(orderRepo, receipts, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	// Initialize handlers
	orderHandler := handler.NewOrderHandler(orderService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	verifier := auth.NewVerifier(testJWTSecret)

	// Create router
	return router.New(orderHandler, settingsHandler, verifier, logger)
}

func testToken(t *testing.T, role string) string {
	t.Helper()

	verifier := auth.NewVerifier(testJWTSecret)
	token, err := verifier.GenerateToken(auth.Identity{UserID: 1, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

// orderForm builds a multipart order submission, optionally attaching a
// payment receipt part.
func orderForm(t *testing.T, fields map[string]string, receiptName, receiptType string, receiptBody []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if receiptName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="payment_receipt"; filename="`+receiptName+`"`)
		header.Set("Content-Type", receiptType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(receiptBody)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	validFields := func() map[string]string {
		return map[string]string{
			"offer_id":  "offer-001",
			"item_name": "Skull Trooper",
			"price":     "1500",
			"username":  "alice",
			"is_bundle": "false",
		}
	}

	t.Run("POST /api/orders creates order without receipt", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		body, contentType := orderForm(t, validFields(), "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    *model.CreateOrderResult `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Data)
		require.NotNil(t, resp.Data.Order)
		assert.Equal(t, "alice", resp.Data.Order.Username)
		assert.Equal(t, model.StatusPending, resp.Data.Order.Status)
		assert.Nil(t, resp.Data.Order.UserID)
		assert.Nil(t, resp.Data.PaymentReceipt)
	})

	t.Run("POST /api/orders stores receipt and links it", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		body, contentType := orderForm(t, validFields(), "proof.png", "image/png", []byte("fake png bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+testToken(t, "user"))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data *model.CreateOrderResult `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Data)
		require.NotNil(t, resp.Data.PaymentReceipt)
		assert.True(t, strings.HasPrefix(*resp.Data.PaymentReceipt, "/payment-receipt/"))
		require.NotNil(t, resp.Data.Order.UserID)
		assert.Equal(t, int64(1), *resp.Data.Order.UserID)

		// The stored receipt is served back to admins
		req = httptest.NewRequest(http.MethodGet, *resp.Data.PaymentReceipt, nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		served, err := io.ReadAll(w.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake png bytes"), served)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})

	t.Run("POST /api/orders rejects non-image receipt", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		body, contentType := orderForm(t, validFields(), "notes.txt", "text/plain", []byte("not an image"))
		req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /api/orders rejects missing fields", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		fields := validFields()
		delete(fields, "offer_id")
		body, contentType := orderForm(t, fields, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET /api/orders requires admin token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, "user"))
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("GET /api/orders returns orders most recent first", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		ids := SeedOrders(t, testDB.Pool)

		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []model.Order `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Data, 3)
		assert.Equal(t, ids[2], resp.Data[0].ID)
		assert.Equal(t, ids[1], resp.Data[1].ID)
		assert.Equal(t, ids[0], resp.Data[2].ID)
	})

	t.Run("PUT /api/orders/{id}/status updates the order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		body, contentType := orderForm(t, validFields(), "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var createResp struct {
			Data *model.CreateOrderResult `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&createResp))
		orderID := createResp.Data.Order.ID

		payload, err := json.Marshal(model.UpdateStatusRequest{Status: "completed"})
		require.NoError(t, err)

		req = httptest.NewRequest(http.MethodPut, "/api/orders/"+strconv.FormatInt(orderID, 10)+"/status", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("PUT /api/orders/{id}/status returns 404 for missing order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		payload, err := json.Marshal(model.UpdateStatusRequest{Status: "completed"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/99999/status", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /payment-receipt requires admin token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/payment-receipt/receipt-1-x.png", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /health returns 200 without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestVbucksRateAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("GET /api/vbucks-rate is public", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		req := httptest.NewRequest(http.MethodGet, "/api/vbucks-rate", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data *model.VbucksRate `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Data)
		assert.Equal(t, 1.0, resp.Data.Rate)
	})

	t.Run("PUT /api/vbucks-rate updates rate and records history", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		payload, err := json.Marshal(model.VbucksRate{Rate: 2.5})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/vbucks-rate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		// New rate is visible publicly
		req = httptest.NewRequest(http.MethodGet, "/api/vbucks-rate", nil)
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		var rateResp struct {
			Data *model.VbucksRate `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&rateResp))
		require.NotNil(t, rateResp.Data)
		assert.Equal(t, 2.5, rateResp.Data.Rate)

		// Change shows up in history
		req = httptest.NewRequest(http.MethodGet, "/api/vbucks-rate/history", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w = httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var historyResp struct {
			Data []model.RateHistoryEntry `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&historyResp))
		require.Len(t, historyResp.Data, 1)
		assert.Equal(t, 2.5, historyResp.Data[0].Rate)
	})

	t.Run("PUT /api/vbucks-rate requires admin token", func(t *testing.T) {
		payload, err := json.Marshal(model.VbucksRate{Rate: 3.0})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/vbucks-rate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("PUT /api/vbucks-rate rejects non-positive rate", func(t *testing.T) {
		payload, err := json.Marshal(model.VbucksRate{Rate: 0})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/vbucks-rate", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+testToken(t, "admin"))
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORS_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("OPTIONS request returns CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
