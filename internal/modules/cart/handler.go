package cart

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tillpoint/pos-backend/internal/modules/catalog"
)

// Handler exposes the cart boundary the desktop shell calls.
type Handler struct {
	session *Session
	catalog catalog.Service
}

func NewHandler(session *Session, catalogService catalog.Service) *Handler {
	return &Handler{session: session, catalog: catalogService}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}/quantity", h.setQuantity)
		r.Put("/items/{id}/price", h.setPrice)
		r.Delete("/items/{id}", h.removeItem)
		r.Delete("/items", h.clear)
		r.Post("/round-up", h.roundUp)
		r.Delete("/round-up", h.revertRoundUp)
		r.Post("/checkout", h.beginCheckout)
		r.Delete("/checkout", h.cancelCheckout)
		r.Post("/new-sale", h.startNewSale)
		r.Get("/receipt", h.getReceipt)
	})
}

type cartView struct {
	Items []Item  `json:"items"`
	Stage Stage   `json:"stage"`
	Total float64 `json:"total"`
}

func (h *Handler) view() cartView {
	items := h.session.Items()
	if items == nil {
		items = []Item{}
	}
	return cartView{Items: items, Stage: h.session.Stage(), Total: h.session.Total()}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), body.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.session.AddItem(product)
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.session.SetQuantity(id, body.Quantity)
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Price <= 0 || math.IsNaN(body.Price) || math.IsInf(body.Price, 0) {
		respondError(w, http.StatusBadRequest, "price must be a positive amount")
		return
	}
	h.session.SetPrice(id, body.Price)
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.session.RemoveItem(id)
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) roundUp(w http.ResponseWriter, r *http.Request) {
	h.session.RoundUp()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) revertRoundUp(w http.ResponseWriter, r *http.Request) {
	h.session.RevertRoundUp()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	h.session.BeginCheckout()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.session.CancelCheckout()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) startNewSale(w http.ResponseWriter, r *http.Request) {
	h.session.StartNewSale()
	respond(w, http.StatusOK, h.view())
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt := h.session.Receipt()
	if receipt == nil {
		respondError(w, http.StatusNotFound, "no completed sale")
		return
	}
	respond(w, http.StatusOK, receipt)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id must be a number")
		return 0, false
	}
	return id, true
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
