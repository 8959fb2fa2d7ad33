package model

import (
	"time"

	"gorm.io/datatypes"
)

// Payment is the persisted payment transaction. Amount is stored in the minor
// currency unit and never changes after creation. Status only moves along the
// edges in status.go, and only through the store's ApplyStatus.
type Payment struct {
	ID            string        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       string        `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	GatewayRef    string        `gorm:"type:varchar(100)" json:"gateway_ref,omitempty"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	EnrollmentID  uint          `gorm:"not null;index" json:"enrollment_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentMethod string        `gorm:"type:varchar(50)" json:"payment_method,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`

	// Raw gateway payload from the last applied transition, kept for audits.
	GatewayPayload datatypes.JSON `json:"gateway_payload,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// StatusUpdate carries everything ApplyStatus may write alongside the new
// status. Empty fields leave the current value untouched.
type StatusUpdate struct {
	Status     PaymentStatus
	Method     string
	GatewayRef string
	Reason     string
	Payload    []byte
}

// StatusStat is one row of the by-status aggregate.
type StatusStat struct {
	Status PaymentStatus `json:"status"`
	Count  int64         `json:"count"`
	Gross  int64         `json:"gross"`
}
