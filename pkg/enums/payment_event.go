package enums

import "fmt"

// PaymentEvent is an observed step of a minor's payment-card lifecycle.
// Steps are ordered: account created, card ordered, card arrived, activated.
type PaymentEvent string

const (
	PaymentEventAccountCreated PaymentEvent = "account_created"
	PaymentEventCardOrdered    PaymentEvent = "card_ordered"
	PaymentEventCardArrived    PaymentEvent = "card_arrived"
	PaymentEventActivated      PaymentEvent = "activated"
)

var orderedPaymentEvents = []PaymentEvent{
	PaymentEventAccountCreated,
	PaymentEventCardOrdered,
	PaymentEventCardArrived,
	PaymentEventActivated,
}

// PaymentEvents returns the lifecycle steps in order.
func PaymentEvents() []PaymentEvent {
	out := make([]PaymentEvent, len(orderedPaymentEvents))
	copy(out, orderedPaymentEvents)
	return out
}

// String implements fmt.Stringer.
func (e PaymentEvent) String() string {
	return string(e)
}

// Rank returns the lifecycle position, or -1 when unknown.
func (e PaymentEvent) Rank() int {
	for i, candidate := range orderedPaymentEvents {
		if candidate == e {
			return i
		}
	}
	return -1
}

// IsValid reports whether the value matches a known PaymentEvent.
func (e PaymentEvent) IsValid() bool {
	return e.Rank() >= 0
}

// ParsePaymentEvent converts raw input into a PaymentEvent.
func ParsePaymentEvent(value string) (PaymentEvent, error) {
	for _, candidate := range orderedPaymentEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment event %q", value)
}
