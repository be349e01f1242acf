package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/pkg/logger"
)

const problemContentType = "application/problem+json"

// Problem is the body of every failed response.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func problemType(kind string) string {
	return "urn:storefront:problem:" + kind
}

// problemFor maps a service error onto its wire shape. Internal causes never
// reach the client.
func problemFor(err error) Problem {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		stock      *service.InsufficientStockError
		conflict   *service.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		detail := validation.Reason
		if validation.Field != "" {
			detail = validation.Field + " " + validation.Reason
		}
		return Problem{Type: problemType("validation"), Title: "Validation failed", Status: http.StatusBadRequest, Detail: detail}
	case errors.As(err, &notFound):
		return Problem{Type: problemType("not-found"), Title: "Not found", Status: http.StatusNotFound,
			Detail: fmt.Sprintf("%s %s was not found", notFound.Resource, notFound.ID)}
	case errors.As(err, &stock):
		return Problem{Type: problemType("insufficient-stock"), Title: "Insufficient stock", Status: http.StatusUnprocessableEntity,
			Detail: fmt.Sprintf("only %d of %s (%s) available, %d requested", stock.Available, stock.ProductTitle, stock.SKU, stock.Requested)}
	case errors.As(err, &conflict):
		return Problem{Type: problemType("conflict"), Title: "Conflict", Status: http.StatusConflict, Detail: conflict.Detail}
	default:
		return Problem{Type: problemType("internal"), Title: "Internal error", Status: http.StatusInternalServerError,
			Detail: "the request could not be completed"}
	}
}

func respondProblem(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	if p.Status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, r, problemContentType, p.Status, p)
}

func respondBadRequest(w http.ResponseWriter, r *http.Request, field, reason string) {
	respondProblem(w, r, &service.ValidationError{Field: field, Reason: reason})
}
