package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/service"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: svc}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var dto CheckoutRequestDTO
	if !decodeJSON(w, r, &dto) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		respondBadRequest(w, r, IdempotencyKeyHeader, "must be at most 255 characters")
		return
	}

	req, err := dto.toDomain(UserIDFromContext(r.Context()), key)
	if err != nil {
		respondProblem(w, r, err)
		return
	}

	resp, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		respondProblem(w, r, err)
		return
	}

	status := http.StatusCreated
	if resp.Replayed {
		w.Header().Set(ReplayedHeader, "true")
		status = http.StatusOK
	}
	w.Header().Set("Location", "/api/v1/orders/"+resp.Order.Number)
	respondJSON(w, r, status, checkoutResponseFromDomain(resp))
}

// decodeJSON reports whether the body was decoded. On failure the problem
// response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, r, problemContentType, http.StatusRequestEntityTooLarge, Problem{
				Type:   problemType("payload-too-large"),
				Title:  "Payload too large",
				Status: http.StatusRequestEntityTooLarge,
				Detail: "request body exceeds the allowed size",
			})
			return false
		}
		respondBadRequest(w, r, "body", "must be a valid JSON object: "+err.Error())
		return false
	}
	return true
}
