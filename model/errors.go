package model

import (
	"fmt"
	"strings"
)

// ValidationError carries the full list of violated constraints so the caller
// can report all problems at once instead of failing on the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// GatewayError means the remote call failed or the gateway rejected the
// request. The record is guaranteed untouched; the caller may retry.
type GatewayError struct {
	Op      string
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Op, e.Message)
}

// SignatureError means the webhook failed its authenticity check. No status
// change may be applied for such a payload.
type SignatureError struct {
	OrderID string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid webhook signature for order %s", e.OrderID)
}

// TransitionError means the requested status change is not an edge of the
// state machine. The record is unchanged.
type TransitionError struct {
	From PaymentStatus
	To   PaymentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
