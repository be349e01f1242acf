package domain

type CheckoutState string

const (
	CheckoutStateValidating       CheckoutState = "VALIDATING"
	CheckoutStatePricing          CheckoutState = "PRICING"
	CheckoutStateScheduleChecking CheckoutState = "SCHEDULE_CHECKING"
	CheckoutStateReservingStock   CheckoutState = "RESERVING_STOCK"
	CheckoutStatePersisting       CheckoutState = "PERSISTING"
	CheckoutStateCommitted        CheckoutState = "COMMITTED"
	CheckoutStateAborted          CheckoutState = "ABORTED"
)

var checkoutTransitions = map[CheckoutState]CheckoutState{
	CheckoutStateValidating:       CheckoutStatePricing,
	CheckoutStatePricing:          CheckoutStateScheduleChecking,
	CheckoutStateScheduleChecking: CheckoutStateReservingStock,
	CheckoutStateReservingStock:   CheckoutStatePersisting,
	CheckoutStatePersisting:       CheckoutStateCommitted,
}

func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCommitted || s == CheckoutStateAborted
}

// CanTransitionTo allows only the next step forward, or an abort from any
// non-terminal state.
func CanTransitionTo(from, to CheckoutState) bool {
	if from.IsTerminal() {
		return false
	}
	if to == CheckoutStateAborted {
		return true
	}
	return checkoutTransitions[from] == to
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
