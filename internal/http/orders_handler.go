package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	service service.CheckoutService
}

func NewOrdersHandler(svc service.CheckoutService) *OrdersHandler {
	return &OrdersHandler{service: svc}
}

// GET /api/v1/orders?limit=&offset=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		respondProblem(w, r, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, orderFromDomain(o))
	}
	respondJSON(w, r, http.StatusOK, dtos)
}

// GET /api/v1/orders/{number}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	order, err := h.service.GetOrder(r.Context(), UserIDFromContext(r.Context()), number)
	if err != nil {
		respondProblem(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, orderFromDomain(order))
}

// queryInt reads an optional integer parameter; absent means zero.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(w, r, name, "must be an integer")
		return 0, false
	}
	return v, true
}
