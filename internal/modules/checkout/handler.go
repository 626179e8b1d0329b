package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the payment endpoints the checkout screen calls.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/card", h.payByCard)
		r.Post("/cash", h.payByCash)
	})
}

func (h *Handler) payByCard(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.PayByCard(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respond(w, http.StatusOK, receipt)
}

func (h *Handler) payByCash(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CashGiven float64 `json:"cash_given"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := h.service.PayByCash(r.Context(), body.CashGiven)
	if err != nil {
		respondFailure(w, err)
		return
	}
	respond(w, http.StatusOK, receipt)
}

func respondFailure(w http.ResponseWriter, err error) {
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		respondError(w, http.StatusBadGateway, remote.Error())
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInsufficientCash):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCheckoutCancelled):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}
