package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
)

// PaymentStore is the system of record for payments and their enrollments.
// ApplyStatus is the single place both records are mutated; everything else
// here is read-only.
type PaymentStore struct {
	DB *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{DB: db}
}

func (s *PaymentStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *PaymentStore) PaymentByID(ctx context.Context, id string) (*model.Payment, error) {
	var p model.Payment
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "payment", Key: id}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) PaymentByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	var p model.Payment
	err := s.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "payment", Key: orderID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) ListByUser(ctx context.Context, userID uint) ([]model.Payment, error) {
	var list []model.Payment
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// pageWindow normalizes paging input: page floors at 1, a missing or invalid
// limit falls back to 20, and an oversized limit is clamped to 100 rather than
// reset.
func pageWindow(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// List returns a page of payments, optionally filtered by status, plus the
// total count for that filter.
func (s *PaymentStore) List(ctx context.Context, status model.PaymentStatus, page, limit int) ([]model.Payment, int64, error) {
	page, limit = pageWindow(page, limit)

	q := s.DB.WithContext(ctx).Model(&model.Payment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Payment
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

func (s *PaymentStore) StatsByStatus(ctx context.Context) ([]model.StatusStat, error) {
	var stats []model.StatusStat
	err := s.DB.WithContext(ctx).Model(&model.Payment{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS gross").
		Group("status").
		Find(&stats).Error
	return stats, err
}

func (s *PaymentStore) EnrollmentByID(ctx context.Context, id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := s.DB.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "enrollment", Key: ""}
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// HasSettledPayment reports whether an enrollment already has a payment in a
// successful state, so a second charge is never opened for it.
func (s *PaymentStore) HasSettledPayment(ctx context.Context, enrollmentID uint) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("enrollment_id = ? AND status IN ?", enrollmentID,
			[]model.PaymentStatus{model.StatusSettlement, model.StatusCapture}).
		Count(&n).Error
	return n > 0, err
}

// ListStalePending returns pending payments created before the cutoff, for
// the expiry sweeper.
func (s *PaymentStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Payment, error) {
	var list []model.Payment
	err := s.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.StatusPending, cutoff).
		Order("created_at").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ApplyStatus applies one status transition atomically across the payment and
// its enrollment. Inside a single database transaction it:
//
//  1. locks the payment row FOR UPDATE,
//  2. returns the record unchanged when the status already matches (duplicate
//     webhook deliveries resolve here),
//  3. rejects anything that is not a legal edge of the state machine,
//  4. updates the payment with a conditional WHERE on the previously read
//     status, so a racing writer degrades to a rejected transition instead of
//     a lost update,
//  5. cascades the linked enrollment in the same transaction.
//
// The bool result reports whether a transition was actually applied.
func (s *PaymentStore) ApplyStatus(ctx context.Context, orderID string, upd model.StatusUpdate) (*model.Payment, bool, error) {
	var out model.Payment
	applied := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.NotFoundError{Resource: "payment", Key: orderID}
		}
		if err != nil {
			return err
		}

		if p.Status == upd.Status {
			out = p
			return nil
		}
		if !model.CanTransition(p.Status, upd.Status) {
			return &model.TransitionError{From: p.Status, To: upd.Status}
		}

		now := time.Now()
		updates := map[string]interface{}{"status": upd.Status, "updated_at": now}
		if upd.Method != "" {
			updates["payment_method"] = upd.Method
		}
		if upd.GatewayRef != "" {
			updates["gateway_ref"] = upd.GatewayRef
		}
		if upd.Reason != "" {
			updates["failure_reason"] = upd.Reason
		}
		if len(upd.Payload) > 0 {
			updates["gateway_payload"] = datatypes.JSON(upd.Payload)
		}
		if upd.Status.Settled() && p.PaidAt == nil {
			updates["paid_at"] = now
		}

		res := tx.Model(&model.Payment{}).
			Where("order_id = ? AND status = ?", orderID, p.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &model.TransitionError{From: p.Status, To: upd.Status}
		}

		var e model.Enrollment
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, p.EnrollmentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.NotFoundError{Resource: "enrollment", Key: p.OrderID}
		}
		if err != nil {
			return err
		}

		if next, ok := model.CascadeEnrollment(upd.Status, e.Status); ok {
			enrUpdates := map[string]interface{}{"status": next, "updated_at": now}
			switch next {
			case model.EnrollmentActive:
				enrUpdates["progress"] = 0
				enrUpdates["activated_at"] = now
			case model.EnrollmentCancelled:
				enrUpdates["cancelled_at"] = now
			}
			if err := tx.Model(&e).Updates(enrUpdates).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", orderID).First(&out).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &out, applied, nil
}
