package model

// PaymentStatus is the canonical status of a payment transaction. Both the
// webhook path and the polling path map gateway vocabulary into this enum
// before touching the record.
type PaymentStatus string

const (
	StatusPending       PaymentStatus = "pending"
	StatusSettlement    PaymentStatus = "settlement"
	StatusCapture       PaymentStatus = "capture"
	StatusDeny          PaymentStatus = "deny"
	StatusCancel        PaymentStatus = "cancel"
	StatusExpire        PaymentStatus = "expire"
	StatusRefund        PaymentStatus = "refund"
	StatusPartialRefund PaymentStatus = "partial_refund"
)

// transitions holds every legal edge of the status state machine.
// Anything not listed here is rejected without mutating the record.
var transitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:    {StatusSettlement, StatusCapture, StatusDeny, StatusCancel, StatusExpire},
	StatusSettlement: {StatusRefund, StatusPartialRefund},
	StatusCapture:    {StatusRefund, StatusPartialRefund},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to PaymentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Settled reports a successful terminal status.
func (s PaymentStatus) Settled() bool {
	return s == StatusSettlement || s == StatusCapture
}

// Failed reports a failure/expiry terminal status.
func (s PaymentStatus) Failed() bool {
	return s == StatusDeny || s == StatusCancel || s == StatusExpire
}

// Refunded reports a refund terminal status.
func (s PaymentStatus) Refunded() bool {
	return s == StatusRefund || s == StatusPartialRefund
}

// Terminal reports whether the status has no outgoing edges.
func (s PaymentStatus) Terminal() bool {
	return len(transitions[s]) == 0 && s != ""
}
