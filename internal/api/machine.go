package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vendo-machines/vendo/internal/domain"
)

// ─── Machine Surface ────────────────────────────────────────────────────────
// These endpoints replace the original on-screen UI: they deliver input
// symbols to the controller and expose its observable state. The controller
// itself decides what is legal; an out-of-place request is a reported
// rejection, never an error that disturbs the machine.

func (s *Server) handleMachineSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type selectRequest struct {
	DrinkID string `json:"drinkId"`
}

func (s *Server) handleMachineSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DrinkID == "" {
		writeError(w, http.StatusBadRequest, "drinkId is required")
		return
	}

	drink, err := s.db.GetDrink(req.DrinkID)
	if errors.Is(err, domain.ErrDrinkNotFound) {
		writeError(w, http.StatusNotFound, "drink not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.ctrl.Select(drink))
}

type eventRequest struct {
	Symbol domain.Symbol `json:"symbol"`
}

func (s *Server) handleMachineEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Submit(req.Symbol))
}

type coinRequest struct {
	Denomination int `json:"denomination"` // cents: 100, 50, or 25
}

func (s *Server) handleMachineCoin(w http.ResponseWriter, r *http.Request) {
	var req coinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "denomination is required")
		return
	}

	res, err := s.ctrl.InsertCoin(req.Denomination)
	if errors.Is(err, domain.ErrBadDenomination) {
		writeError(w, http.StatusBadRequest, "unrecognized coin denomination")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMachineCancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Cancel())
}
