package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentPendingPayment EnrollmentStatus = "pending_payment"
	EnrollmentActive         EnrollmentStatus = "active"
	EnrollmentCompleted      EnrollmentStatus = "completed"
	EnrollmentCancelled      EnrollmentStatus = "cancelled"
)

// Enrollment is created in pending_payment by the enrollment flow before any
// payment exists. While its payment is open, its status is only ever written
// by the payment cascade.
type Enrollment struct {
	ID       uint             `gorm:"primaryKey" json:"id"`
	UserID   uint             `gorm:"not null;index" json:"user_id"`
	CourseID uint             `gorm:"not null;index" json:"course_id"`
	Status   EnrollmentStatus `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	Progress int              `gorm:"not null;default:0" json:"progress"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// CascadeEnrollment decides how a payment status change projects onto the
// linked enrollment. It returns the target status and false when the
// enrollment must be left alone:
//   - settlement/capture activates the enrollment unless it is already
//     active or completed (a repeated activation must not reset progress);
//   - deny/cancel/expire cancels it only while it still waits for payment;
//   - refunds never touch the enrollment here (handled by course ops).
func CascadeEnrollment(next PaymentStatus, current EnrollmentStatus) (EnrollmentStatus, bool) {
	switch {
	case next.Settled():
		if current == EnrollmentActive || current == EnrollmentCompleted {
			return current, false
		}
		return EnrollmentActive, true
	case next.Failed():
		if current != EnrollmentPendingPayment {
			return current, false
		}
		return EnrollmentCancelled, true
	default:
		return current, false
	}
}
