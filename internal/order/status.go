package order

type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusProcessing     Status = "PROCESSING"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// transitions is the full order lifecycle:
// PENDING_PAYMENT -> PROCESSING -> SHIPPED -> DELIVERED, with cancellation
// possible until shipping. DELIVERED and CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether stock compensation is still allowed.
func (s Status) Cancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

func ToStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPendingPayment, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), true
	}
	return "", false
}
