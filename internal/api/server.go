// Package api provides the HTTP surface of the vending machine: the
// catalog/stock/payment endpoints any presentation layer consumes, the
// pay-page endpoints the remote payer's phone drives, and the machine
// observation/input endpoints that replace the original on-screen UI.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendo-machines/vendo/internal/infra/services"
	"github.com/vendo-machines/vendo/internal/infra/sqlite"
	"github.com/vendo-machines/vendo/internal/machine"
)

// Server is the vendo HTTP API server.
type Server struct {
	db             *sqlite.DB
	payments       *services.Payments
	ctrl           *machine.Controller
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(db *sqlite.DB, payments *services.Payments, ctrl *machine.Controller) *Server {
	return &Server{db: db, payments: payments, ctrl: ctrl}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	// Health check for uptime probes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	// Catalog and stock
	r.Route("/api", func(r chi.Router) {
		r.Get("/drinks", s.handleListDrinks)
		r.Get("/drinks/{id}", s.handleGetDrink)
		r.Get("/stock/{id}", s.handleGetStock)
		r.Post("/purchase", s.handlePurchase)

		r.Post("/payments", s.handleCreatePayment)
		r.Get("/payments/{id}", s.handleGetPayment)
		r.Get("/qr/{id}", s.handleQRImage)

		// Machine observation and input (replaces the on-screen UI)
		r.Get("/machine", s.handleMachineSnapshot)
		r.Post("/machine/select", s.handleMachineSelect)
		r.Post("/machine/event", s.handleMachineEvent)
		r.Post("/machine/coin", s.handleMachineCoin)
		r.Post("/machine/cancel", s.handleMachineCancel)
	})

	// Remote payer's phone page drives these out-of-band.
	r.Post("/pay/{id}/confirm", s.handlePayConfirm)
	r.Post("/pay/{id}/cancel", s.handlePayCancel)

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": msg,
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
