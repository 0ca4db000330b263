package router

import (
	"net/http"
	"strings"

	"gamestore-api/internal/auth"
	"gamestore-api/internal/handler"
	"gamestore-api/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	settingsHandler *handler.SettingsHandler,
	verifier *auth.Verifier,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	adminOnly := middleware.RequireAdmin(verifier, logger)
	optionalAuth := middleware.OptionalAuth(verifier, logger)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Prometheus exposition
	mux.Handle("/metrics", promhttp.Handler())

	createOrder := optionalAuth(http.HandlerFunc(orderHandler.Create))
	listOrders := adminOnly(http.HandlerFunc(orderHandler.List))
	updateStatus := adminOnly(http.HandlerFunc(orderHandler.UpdateStatus))

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Route based on method and path
		if r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/" {
			switch r.Method {
			case http.MethodPost:
				createOrder.ServeHTTP(w, r)
			case http.MethodGet:
				listOrders.ServeHTTP(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Check if this is a status update for a specific order ID
		if strings.HasPrefix(r.URL.Path, "/api/orders/") && strings.HasSuffix(r.URL.Path, "/status") {
			updateStatus.ServeHTTP(w, r)
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Payment receipt images are admin-only regardless of which order they
	// belong to
	mux.Handle("/payment-receipt/", adminOnly(http.HandlerFunc(orderHandler.Receipt)))

	// V-Bucks rate: public read, admin write and history
	mux.Handle("/api/vbucks-rate/history", adminOnly(http.HandlerFunc(settingsHandler.RateHistory)))
	mux.HandleFunc("/api/vbucks-rate", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsHandler.GetRate(w, r)
		case http.MethodPut:
			adminOnly(http.HandlerFunc(settingsHandler.UpdateRate)).ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Metrics(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
