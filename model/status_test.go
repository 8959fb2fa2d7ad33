package model

import "testing"

var allStatuses = []PaymentStatus{
	StatusPending, StatusSettlement, StatusCapture, StatusDeny,
	StatusCancel, StatusExpire, StatusRefund, StatusPartialRefund,
}

func TestCanTransition_LegalEdges(t *testing.T) {
	legal := []struct{ from, to PaymentStatus }{
		{StatusPending, StatusSettlement},
		{StatusPending, StatusCapture},
		{StatusPending, StatusDeny},
		{StatusPending, StatusCancel},
		{StatusPending, StatusExpire},
		{StatusSettlement, StatusRefund},
		{StatusSettlement, StatusPartialRefund},
		{StatusCapture, StatusRefund},
		{StatusCapture, StatusPartialRefund},
	}

	for _, e := range legal {
		if !CanTransition(e.from, e.to) {
			t.Errorf("expected %s -> %s to be legal", e.from, e.to)
		}
	}
}

func TestCanTransition_EverythingElseRejected(t *testing.T) {
	legal := map[[2]PaymentStatus]bool{}
	for _, from := range []PaymentStatus{StatusPending} {
		for _, to := range []PaymentStatus{StatusSettlement, StatusCapture, StatusDeny, StatusCancel, StatusExpire} {
			legal[[2]PaymentStatus{from, to}] = true
		}
	}
	for _, from := range []PaymentStatus{StatusSettlement, StatusCapture} {
		for _, to := range []PaymentStatus{StatusRefund, StatusPartialRefund} {
			legal[[2]PaymentStatus{from, to}] = true
		}
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if legal[[2]PaymentStatus{from, to}] {
				continue
			}
			if CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestCanTransition_TerminalHaveNoOutgoingEdges(t *testing.T) {
	for _, s := range []PaymentStatus{StatusDeny, StatusCancel, StatusExpire, StatusRefund, StatusPartialRefund} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
		for _, to := range allStatuses {
			if CanTransition(s, to) {
				t.Errorf("terminal %s must have no edge to %s", s, to)
			}
		}
	}
}

func TestStatusClassification(t *testing.T) {
	if !StatusSettlement.Settled() || !StatusCapture.Settled() {
		t.Error("settlement and capture are successful statuses")
	}
	if StatusPending.Settled() || StatusRefund.Settled() {
		t.Error("pending/refund must not classify as settled")
	}
	if !StatusDeny.Failed() || !StatusCancel.Failed() || !StatusExpire.Failed() {
		t.Error("deny, cancel and expire are failure statuses")
	}
	if !StatusRefund.Refunded() || !StatusPartialRefund.Refunded() {
		t.Error("refund and partial_refund are refund statuses")
	}
}

func TestCascadeEnrollment(t *testing.T) {
	t.Run("settlement activates pending enrollment", func(t *testing.T) {
		next, ok := CascadeEnrollment(StatusSettlement, EnrollmentPendingPayment)
		if !ok || next != EnrollmentActive {
			t.Fatalf("got (%s, %v), want (active, true)", next, ok)
		}
	})

	t.Run("settlement leaves active enrollment alone", func(t *testing.T) {
		if _, ok := CascadeEnrollment(StatusCapture, EnrollmentActive); ok {
			t.Fatal("already-active enrollment must not be touched (progress reset)")
		}
		if _, ok := CascadeEnrollment(StatusSettlement, EnrollmentCompleted); ok {
			t.Fatal("completed enrollment must not be touched")
		}
	})

	t.Run("failure cancels only while pending payment", func(t *testing.T) {
		next, ok := CascadeEnrollment(StatusExpire, EnrollmentPendingPayment)
		if !ok || next != EnrollmentCancelled {
			t.Fatalf("got (%s, %v), want (cancelled, true)", next, ok)
		}
		if _, ok := CascadeEnrollment(StatusDeny, EnrollmentActive); ok {
			t.Fatal("failure must not cancel an active enrollment")
		}
	})

	t.Run("refunds never cascade here", func(t *testing.T) {
		if _, ok := CascadeEnrollment(StatusRefund, EnrollmentActive); ok {
			t.Fatal("refund must not change the enrollment")
		}
	})
}
