package service

import (
	"context"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/cache"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
)

// GetPayment returns a payment by internal id. Non-admin callers only see
// their own records.
func (r *Reconciler) GetPayment(ctx context.Context, id string, userID uint, isAdmin bool) (*model.Payment, error) {
	p, err := r.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != userID {
		return nil, &model.NotFoundError{Resource: "payment", Key: id}
	}
	return p, nil
}

// GetPaymentByOrder returns a payment by its externally visible order id.
func (r *Reconciler) GetPaymentByOrder(ctx context.Context, orderID string, userID uint, isAdmin bool) (*model.Payment, error) {
	p, err := r.store.PaymentByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != userID {
		return nil, &model.NotFoundError{Resource: "payment", Key: orderID}
	}
	return p, nil
}

// ListUserPayments lists a user's payments, served from cache when warm.
func (r *Reconciler) ListUserPayments(ctx context.Context, userID uint) ([]model.Payment, error) {
	key := cache.UserPaymentsKey(userID)

	var cached []model.Payment
	if r.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	list, err := r.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.cache.SetJSON(ctx, key, list)
	return list, nil
}

// ListPayments lists all payments with an optional status filter and paging.
func (r *Reconciler) ListPayments(ctx context.Context, status model.PaymentStatus, page, limit int) ([]model.Payment, int64, error) {
	if status != "" && !knownStatus(status) {
		return nil, 0, &model.ValidationError{Violations: []string{"unknown status filter"}}
	}
	return r.store.List(ctx, status, page, limit)
}

// Stats aggregates payment counts and gross amounts by status.
func (r *Reconciler) Stats(ctx context.Context) ([]model.StatusStat, error) {
	var cached []model.StatusStat
	if r.cache.GetJSON(ctx, cache.StatsKey, &cached) {
		return cached, nil
	}

	stats, err := r.store.StatsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetJSON(ctx, cache.StatsKey, stats)
	return stats, nil
}

func knownStatus(s model.PaymentStatus) bool {
	switch s {
	case model.StatusPending, model.StatusSettlement, model.StatusCapture,
		model.StatusDeny, model.StatusCancel, model.StatusExpire,
		model.StatusRefund, model.StatusPartialRefund:
		return true
	}
	return false
}

// MethodCategory is one group of payment methods the gateway supports.
type MethodCategory struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Methods []string `json:"methods"`
}

var methodCategories = []MethodCategory{
	{Code: "bank_transfer", Name: "Bank Transfer", Methods: []string{"bca", "bni", "bri", "permata"}},
	{Code: "ewallet", Name: "E-Wallet", Methods: []string{"gopay", "shopeepay", "qris"}},
	{Code: "credit_card", Name: "Credit Card", Methods: []string{"visa", "mastercard", "jcb"}},
	{Code: "cstore", Name: "Convenience Store", Methods: []string{"indomaret", "alfamart"}},
}

// PaymentMethods lists the payment method categories offered at checkout.
func (r *Reconciler) PaymentMethods() []MethodCategory {
	return methodCategories
}
