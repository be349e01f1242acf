package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Checkout converts the request's cart into a pending order. Stock
// reservation, order persistence and cart removal happen in one unit of work;
// on any failure nothing is written.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, request *domain.CheckoutRequest) (resp *domain.CheckoutResponse, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "checkout")
	defer span.End()

	defer func() {
		result := ResultLabel(err)
		if err == nil && resp.Replayed {
			result = "replayed"
		}
		s.metrics.ObserveCheckout(result, time.Since(start))
		span.SetAttributes(attribute.String("checkout.result", result))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
			return
		}
		span.SetAttributes(attribute.String("order.number", resp.Order.Number))
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	run := &checkoutRun{state: domain.CheckoutStateValidating, log: logger.FromContextOr(ctx, s.logger)}
	if request == nil {
		return nil, run.abort(ctx, &ValidationError{Reason: "request is required"})
	}

	if err := validateRequest(request); err != nil {
		return nil, run.abort(ctx, err)
	}
	source, err := validateCartSource(request.Source)
	if err != nil {
		return nil, run.abort(ctx, err)
	}

	if request.IdempotencyKey != "" {
		replayed, err := s.replay(ctx, request)
		if err != nil {
			return nil, run.abort(ctx, err)
		}
		if replayed != nil {
			run.log.InfoContext(ctx, "checkout replayed",
				"idempotency_key", request.IdempotencyKey,
				"order_number", replayed.Order.Number)
			return replayed, nil
		}
	}

	locale := s.locale(request.Locale)
	lines, err := s.resolveCartSource(ctx, source, locale)
	if err != nil {
		return nil, run.abort(ctx, err)
	}

	if err := run.advance(ctx, domain.CheckoutStatePricing); err != nil {
		return nil, run.abort(ctx, err)
	}
	snap, err := s.loadDiscountSnapshot(ctx)
	if err != nil {
		return nil, run.abort(ctx, err)
	}
	priced := priceLines(lines, snap)
	totals := computeTotals(priced)

	if err := run.advance(ctx, domain.CheckoutStateScheduleChecking); err != nil {
		return nil, run.abort(ctx, err)
	}
	if err := s.checkSchedule(request); err != nil {
		return nil, run.abort(ctx, err)
	}

	if err := run.advance(ctx, domain.CheckoutStateReservingStock); err != nil {
		return nil, run.abort(ctx, err)
	}
	plan := reservationPlan(priced)
	if err := precheckStock(plan); err != nil {
		return nil, run.abort(ctx, err)
	}

	now := s.now()
	order, err := s.commitOrder(ctx, run, assembleInput{
		request: request,
		lines:   priced,
		totals:  totals,
		number:  s.newOrderNumber(now),
		locale:  locale,
		now:     now,
	}, plan)
	if err != nil {
		// a concurrent request with the same key won the insert
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			replayed, rerr := s.replay(ctx, request)
			if rerr != nil {
				return nil, run.abort(ctx, rerr)
			}
			if replayed != nil {
				return replayed, nil
			}
		}
		return nil, run.abort(ctx, classify("commit order", err))
	}

	if err := run.advance(ctx, domain.CheckoutStateCommitted); err != nil {
		return nil, run.abort(ctx, err)
	}
	run.log.InfoContext(ctx, "order created",
		"order_id", order.ID.String(),
		"order_number", order.Number,
		"total", order.Total.String(),
		"currency", order.Currency,
		"lines", len(order.Items))

	return summarize(order), nil
}

func (s *CheckoutServiceImpl) locale(requested string) string {
	if l := strings.TrimSpace(requested); l != "" {
		return l
	}
	return s.defaultLocale
}

func validateRequest(req *domain.CheckoutRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if strings.TrimSpace(req.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	if !req.ShippingMethod.Valid() {
		return &ValidationError{Field: "shippingMethod", Reason: "must be one of pickup, delivery"}
	}
	if !req.PaymentMethod.Valid() {
		return &ValidationError{Field: "paymentMethod", Reason: "must be one of idram, arca, card, cash_on_delivery"}
	}
	if req.ShippingMethod == domain.ShippingMethodDelivery {
		addr := req.ShippingAddress
		if addr == nil {
			return &ValidationError{Field: "shippingAddress", Reason: "is required for delivery"}
		}
		if strings.TrimSpace(addr.Address) == "" {
			return &ValidationError{Field: "shippingAddress.address", Reason: "is required for delivery"}
		}
		if strings.TrimSpace(addr.City) == "" {
			return &ValidationError{Field: "shippingAddress.city", Reason: "is required for delivery"}
		}
	}
	return nil
}

// checkoutRun tracks the state of one checkout.
type checkoutRun struct {
	state domain.CheckoutState
	log   *slog.Logger
}

func (r *checkoutRun) advance(ctx context.Context, to domain.CheckoutState) error {
	if !domain.CanTransitionTo(r.state, to) {
		return &InternalError{
			Op:  "checkout state transition",
			Err: fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.state, to),
		}
	}
	r.log.DebugContext(ctx, "checkout state transition", "from", r.state.String(), "to", to.String())
	r.state = to
	return nil
}

func (r *checkoutRun) abort(ctx context.Context, err error) error {
	from := r.state
	if domain.CanTransitionTo(r.state, domain.CheckoutStateAborted) {
		r.state = domain.CheckoutStateAborted
	}

	var internal *InternalError
	if errors.As(err, &internal) {
		r.log.ErrorContext(ctx, "checkout aborted",
			"state", from.String(),
			"op", internal.Op,
			"error", internal.Err)
		return err
	}
	r.log.WarnContext(ctx, "checkout rejected",
		"state", from.String(),
		"result", ResultLabel(err),
		"reason", err.Error())
	return err
}
