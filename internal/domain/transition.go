package domain

import (
	"slices"
	"time"
)

// EventKind names something that happened to a payment.
type EventKind string

const (
	EventGatewayApproved EventKind = "GATEWAY_APPROVED"
	EventGatewayDeclined EventKind = "GATEWAY_DECLINED"
	EventChargeAbandoned EventKind = "CHARGE_ABANDONED"
	EventRefundRequested EventKind = "REFUND_REQUESTED"
)

// Event carries the kind plus the data its side effect records.
type Event struct {
	Kind          EventKind
	TransactionID string
	Reason        string
	At            time.Time
}

func GatewayApproved(transactionID string, at time.Time) Event {
	return Event{Kind: EventGatewayApproved, TransactionID: transactionID, At: at}
}

func GatewayDeclined(reason string, at time.Time) Event {
	return Event{Kind: EventGatewayDeclined, Reason: reason, At: at}
}

func ChargeAbandoned(reason string, at time.Time) Event {
	return Event{Kind: EventChargeAbandoned, Reason: reason, At: at}
}

func RefundRequested(reason string, at time.Time) Event {
	return Event{Kind: EventRefundRequested, Reason: reason, At: at}
}

// transitions lists, per state, the events it accepts and where they lead.
// States absent from the table are terminal.
var transitions = map[PaymentStatus]map[EventKind]PaymentStatus{
	StatusPending: {
		EventGatewayApproved: StatusSuccess,
		EventGatewayDeclined: StatusFailed,
		EventChargeAbandoned: StatusFailed,
	},
	StatusSuccess: {
		EventRefundRequested: StatusRefunded,
	},
}

// Transition applies e to p and returns the resulting payment. p is never
// modified; a rejected event returns an INVALID_TRANSITION DomainError.
func Transition(p Payment, e Event) (Payment, error) {
	target, err := nextStatus(p.Status, e.Kind)
	if err != nil {
		return p, err
	}

	next := p
	next.Status = target
	if !e.At.IsZero() {
		next.UpdatedAt = e.At
	}

	switch e.Kind {
	case EventGatewayApproved:
		if e.TransactionID == "" {
			return p, NewMissingRequiredFieldError("transaction ID")
		}
		next.TransactionID = stringPtr(e.TransactionID)
		next.FailureReason = nil
	case EventGatewayDeclined, EventChargeAbandoned, EventRefundRequested:
		// refunds store their reason in FailureReason too
		next.FailureReason = nil
		if e.Reason != "" {
			next.FailureReason = stringPtr(e.Reason)
		}
	}

	return next, nil
}

// CanApply reports whether the event is legal in the given state.
func CanApply(status PaymentStatus, kind EventKind) bool {
	_, err := nextStatus(status, kind)
	return err == nil
}

func nextStatus(current PaymentStatus, kind EventKind) (PaymentStatus, error) {
	target, ok := transitions[current][kind]
	if !ok {
		return "", NewInvalidTransitionError(current, kind, rejectionReason(current, kind))
	}
	return target, nil
}

func rejectionReason(current PaymentStatus, kind EventKind) string {
	switch {
	case kind == EventRefundRequested && current == StatusPending:
		return "payment is not yet settled"
	case kind == EventRefundRequested && current == StatusFailed:
		return "only successful payments can be refunded"
	case current == StatusFailed || current == StatusRefunded:
		return "payment is already " + string(current)
	case slices.Contains([]EventKind{EventGatewayApproved, EventGatewayDeclined, EventChargeAbandoned}, kind):
		return "gateway outcome already applied"
	}
	return "event not allowed"
}

func stringPtr(s string) *string {
	return &s
}
