package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendo-machines/vendo/internal/domain"
)

// ─── Catalog & Stock ────────────────────────────────────────────────────────

func (s *Server) handleListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := s.db.ListDrinks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, drinks)
}

func (s *Server) handleGetDrink(w http.ResponseWriter, r *http.Request) {
	drink, err := s.db.GetDrink(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrDrinkNotFound) {
		writeError(w, http.StatusNotFound, "drink not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, drink)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stock, err := s.db.GetStock(id)
	if errors.Is(err, domain.ErrDrinkNotFound) {
		writeError(w, http.StatusNotFound, "drink not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    id,
		"stock": stock,
	})
}

type purchaseRequest struct {
	DrinkID string `json:"drinkId"`
}

// handlePurchase decrements stock for a cash purchase.
func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DrinkID == "" {
		writeError(w, http.StatusBadRequest, "drinkId is required")
		return
	}

	stock, err := s.db.DecrementStock(req.DrinkID)
	switch {
	case errors.Is(err, domain.ErrDrinkNotFound):
		writeError(w, http.StatusNotFound, "drink not found")
		return
	case errors.Is(err, domain.ErrSoldOut):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Sold out",
			"stock": 0,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"drinkId": req.DrinkID,
		"stock":   stock,
	})
}

// ─── Payments ───────────────────────────────────────────────────────────────

// handleCreatePayment opens a QR payment for a drink.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DrinkID == "" {
		writeError(w, http.StatusBadRequest, "drinkId is required")
		return
	}

	intent, err := s.payments.Create(r.Context(), req.DrinkID)
	switch {
	case errors.Is(err, domain.ErrDrinkNotFound):
		writeError(w, http.StatusNotFound, "drink not found")
		return
	case errors.Is(err, domain.ErrSoldOut):
		writeError(w, http.StatusBadRequest, "Sold out")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	drink, err := s.db.GetDrink(req.DrinkID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"paymentId": intent.Handle,
		"payUrl":    intent.PayURL,
		"qr":        "data:image/png;base64," + base64.StdEncoding.EncodeToString(intent.QRPNG),
		"drink": map[string]interface{}{
			"id":          drink.ID,
			"name":        drink.Name,
			"price_cents": drink.PriceCents,
			"stock":       drink.Stock,
		},
	})
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.Get(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrPaymentNotFound) {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// handleQRImage serves the active machine payment's QR code as PNG.
func (s *Server) handleQRImage(w http.ResponseWriter, r *http.Request) {
	png := s.ctrl.QRImage()
	if len(png) == 0 {
		writeError(w, http.StatusNotFound, "no pending QR payment")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ─── Pay Page (remote payer) ────────────────────────────────────────────────

func (s *Server) handlePayConfirm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.payments.Confirm(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "payment not found")
		return
	case errors.Is(err, domain.ErrAlreadyPaid):
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"alreadyPaid": true,
		})
		return
	case errors.Is(err, domain.ErrSoldOut):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Sold out now",
			"stock": 0,
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handlePayCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.payments.Cancel(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "payment not found")
		return
	case errors.Is(err, domain.ErrAlreadyPaid):
		writeError(w, http.StatusBadRequest, "Payment already completed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"paymentId": id,
	})
}
