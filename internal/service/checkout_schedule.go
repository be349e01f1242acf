package service

import (
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

const minDeliveryLeadTime = 24 * time.Hour

// checkSchedule validates the requested delivery day, if any. Pickup orders
// and deliveries without a requested day are not checked.
func (s *CheckoutServiceImpl) checkSchedule(req *domain.CheckoutRequest) error {
	if req.ShippingMethod != domain.ShippingMethodDelivery || req.ShippingAddress == nil || req.ShippingAddress.DeliveryDay == nil {
		return nil
	}
	return validateDeliveryDay(*req.ShippingAddress.DeliveryDay, s.now())
}

func validateDeliveryDay(day, now time.Time) error {
	if day.Sub(now) < minDeliveryLeadTime {
		return &ValidationError{
			Field:  "shippingAddress.deliveryDay",
			Reason: "must be at least 24 hours from now",
		}
	}
	return nil
}
