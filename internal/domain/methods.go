package domain

type ShippingMethod string

const (
	ShippingMethodPickup   ShippingMethod = "pickup"
	ShippingMethodDelivery ShippingMethod = "delivery"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingMethodPickup || m == ShippingMethodDelivery
}

type PaymentMethod string

const (
	PaymentMethodIdram          PaymentMethod = "idram"
	PaymentMethodArca           PaymentMethod = "arca"
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodIdram, PaymentMethodArca, PaymentMethodCard, PaymentMethodCashOnDelivery:
		return true
	}
	return false
}

// IsOnline reports whether the customer is redirected to a payment provider.
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodIdram || m == PaymentMethodArca || m == PaymentMethodCard
}

// Provider names the payment provider that will handle the method.
func (m PaymentMethod) Provider() string {
	switch m {
	case PaymentMethodIdram:
		return "idram"
	case PaymentMethodArca, PaymentMethodCard:
		return "arca"
	default:
		return "cash"
	}
}

type NextAction string

const (
	NextActionRedirectToPayment NextAction = "redirect_to_payment"
	NextActionViewOrder         NextAction = "view_order"
)
