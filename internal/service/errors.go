package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/repository"
)

var ErrIllegalTransition = errors.New("illegal transition of checkout state")

// CheckoutError is implemented only by the error types of this package.
// Every failure returned by the service is one of them.
type CheckoutError interface {
	error
	checkoutError()
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

type InsufficientStockError struct {
	ProductTitle string
	SKU          string
	Available    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): available %d, requested %d",
		e.ProductTitle, e.SKU, e.Available, e.Requested)
}

type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Detail)
}

// InternalError wraps an unexpected failure. Err is for logs only.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error during %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func (*ValidationError) checkoutError()        {}
func (*NotFoundError) checkoutError()          {}
func (*InsufficientStockError) checkoutError() {}
func (*ConflictError) checkoutError()          {}
func (*InternalError) checkoutError()          {}

// classify turns a store error into a CheckoutError. Errors that are already
// classified pass through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce CheckoutError
	if errors.As(err, &ce) {
		return ce
	}
	switch {
	case errors.Is(err, repository.ErrDuplicateOrderNumber):
		return &ConflictError{Resource: "order", Detail: "order number already exists, please retry"}
	case errors.Is(err, repository.ErrDuplicateIdempotencyKey):
		return &ConflictError{Resource: "idempotency key", Detail: "a checkout with this key is already in progress"}
	case errors.Is(err, context.DeadlineExceeded):
		return &InternalError{Op: op, Err: fmt.Errorf("timed out: %w", err)}
	}
	return &InternalError{Op: op, Err: err}
}

// ResultLabel names the outcome of a checkout for metrics.
func ResultLabel(err error) string {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		stock      *InsufficientStockError
		conflict   *ConflictError
	)
	switch {
	case err == nil:
		return "committed"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.As(err, &conflict):
		return "conflict"
	default:
		return "internal"
	}
}
