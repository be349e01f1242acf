package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
)

// replay returns the stored outcome for a repeated idempotency key, or nil
// when the key has not been used yet. A key reused by another owner or for a
// different request is a conflict.
func (s *CheckoutServiceImpl) replay(ctx context.Context, request *domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	order, err := s.repo.GetOrderByIdempotencyKey(ctx, request.IdempotencyKey)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("check idempotency", err)
	}

	if !sameOwner(order.UserID, request.UserID) {
		return nil, &ConflictError{Resource: "idempotency key", Detail: "key was already used by another checkout"}
	}
	if order.RequestFingerprint == nil || *order.RequestFingerprint != requestFingerprint(request) {
		return nil, &ConflictError{Resource: "idempotency key", Detail: "key was already used for a different request"}
	}

	resp := summarize(order)
	resp.Replayed = true
	return resp, nil
}

func sameOwner(orderUserID *string, userID string) bool {
	if orderUserID == nil {
		return userID == ""
	}
	return *orderUserID == userID
}

type fingerprintItem struct {
	ProductID string `json:"p"`
	VariantID string `json:"v"`
	Quantity  int    `json:"q"`
}

type fingerprintInput struct {
	UserID         string            `json:"user,omitempty"`
	CartID         string            `json:"cart,omitempty"`
	Items          []fingerprintItem `json:"items,omitempty"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	ShippingMethod string            `json:"shipping"`
	Address        *domain.Address   `json:"address,omitempty"`
	PaymentMethod  string            `json:"payment"`
}

// requestFingerprint hashes the parts of a request that decide the order it
// creates. Locale only changes display titles and is left out.
func requestFingerprint(req *domain.CheckoutRequest) string {
	in := fingerprintInput{
		UserID:         req.UserID,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		ShippingMethod: string(req.ShippingMethod),
		PaymentMethod:  string(req.PaymentMethod),
	}
	if req.ShippingMethod == domain.ShippingMethodDelivery && req.ShippingAddress != nil {
		addr := *req.ShippingAddress
		if addr.DeliveryDay != nil {
			day := addr.DeliveryDay.UTC()
			addr.DeliveryDay = &day
		}
		in.Address = &addr
	}

	switch src := req.Source.(type) {
	case domain.OwnedCart:
		in.CartID = src.CartID
	case *domain.OwnedCart:
		if src != nil {
			in.CartID = src.CartID
		}
	case domain.GuestItems:
		in.Items = fingerprintItems(src.Items)
	case *domain.GuestItems:
		if src != nil {
			in.Items = fingerprintItems(src.Items)
		}
	}

	// fields are plain strings and ints, Marshal cannot fail
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fingerprintItems(items []domain.GuestItem) []fingerprintItem {
	out := make([]fingerprintItem, 0, len(items))
	for _, item := range items {
		out = append(out, fingerprintItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return out
}
