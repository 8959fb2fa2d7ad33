package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/cache"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/metrics"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/midtrans"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
)

// Store is what the engine needs from persistence. *store.PaymentStore
// implements it; tests use an in-memory fake.
type Store interface {
	CreatePayment(ctx context.Context, p *model.Payment) error
	PaymentByID(ctx context.Context, id string) (*model.Payment, error)
	PaymentByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Payment, error)
	List(ctx context.Context, status model.PaymentStatus, page, limit int) ([]model.Payment, int64, error)
	StatsByStatus(ctx context.Context) ([]model.StatusStat, error)
	EnrollmentByID(ctx context.Context, id uint) (*model.Enrollment, error)
	HasSettledPayment(ctx context.Context, enrollmentID uint) (bool, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Payment, error)
	ApplyStatus(ctx context.Context, orderID string, upd model.StatusUpdate) (*model.Payment, bool, error)
}

// Gateway is the outbound payment gateway contract. *midtrans.Client
// implements it.
type Gateway interface {
	CreateTransaction(ctx context.Context, p *midtrans.ChargeParams) (*midtrans.SnapResponse, error)
	QueryStatus(ctx context.Context, orderID string) (*midtrans.StatusResponse, error)
	Cancel(ctx context.Context, orderID string) error
	Refund(ctx context.Context, orderID string, amount int64, reason string) error
}

// Publisher emits payment lifecycle events after a transition commits.
type Publisher interface {
	Publish(eventType string, data map[string]interface{})
}

// Reconciler owns the payment lifecycle: it creates transactions against the
// gateway and funnels every status report — webhook, poll, cancel, refund,
// expiry sweep — through the store's single idempotent apply operation.
type Reconciler struct {
	store     Store
	gateway   Gateway
	cache     *cache.Cache
	events    Publisher
	serverKey string
	expiry    time.Duration
}

func NewReconciler(store Store, gateway Gateway, c *cache.Cache, events Publisher, serverKey string, expiry time.Duration) *Reconciler {
	return &Reconciler{
		store:     store,
		gateway:   gateway,
		cache:     c,
		events:    events,
		serverKey: serverKey,
		expiry:    expiry,
	}
}

// ChargeResult is returned to the checkout flow after a transaction is
// registered with the gateway.
type ChargeResult struct {
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id"`
	Token         string    `json:"token"`
	RedirectURL   string    `json:"redirect_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// CreateCharge validates the request, registers the transaction with the
// gateway and persists a pending payment record. The gateway call comes
// first: if it fails, no record is written at all.
func (r *Reconciler) CreateCharge(ctx context.Context, userID uint, req *ChargeRequest) (*ChargeResult, error) {
	if violations := ValidateCharge(req); len(violations) > 0 {
		return nil, &model.ValidationError{Violations: violations}
	}

	enr, err := r.store.EnrollmentByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enr.UserID != userID {
		return nil, &model.NotFoundError{Resource: "enrollment", Key: fmt.Sprint(req.EnrollmentID)}
	}
	if enr.Status != model.EnrollmentPendingPayment {
		return nil, &model.ValidationError{Violations: []string{"enrollment is not awaiting payment"}}
	}

	settled, err := r.store.HasSettledPayment(ctx, req.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, &model.ValidationError{Violations: []string{"enrollment already has a settled payment"}}
	}

	orderID := fmt.Sprintf("U%d-%d", userID, time.Now().UnixMilli())

	params := &midtrans.ChargeParams{
		OrderID:     orderID,
		GrossAmount: req.Amount,
		Customer: midtrans.CustomerDetails{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		},
		ExpiryMinutes: int(r.expiry.Minutes()),
	}
	for _, it := range req.Items {
		params.Items = append(params.Items, midtrans.ItemDetails{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}

	snap, err := r.gateway.CreateTransaction(ctx, params)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		UserID:       userID,
		EnrollmentID: req.EnrollmentID,
		Amount:       req.Amount,
		Status:       model.StatusPending,
	}
	if err := r.store.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	r.cache.Invalidate(ctx, cache.UserPaymentsKey(userID), cache.StatsKey)

	log.WithFields(log.Fields{
		"order_id": orderID,
		"user_id":  userID,
		"amount":   req.Amount,
	}).Info("Payment transaction created")

	return &ChargeResult{
		TransactionID: payment.ID,
		OrderID:       orderID,
		Token:         snap.Token,
		RedirectURL:   snap.RedirectURL,
		ExpiresAt:     time.Now().Add(r.expiry),
	}, nil
}

// VerifyAndApply is the webhook entry point: signature first, then map, then
// the idempotent apply. A payload that fails verification changes nothing.
func (r *Reconciler) VerifyAndApply(ctx context.Context, n *midtrans.Notification, raw []byte) (*model.Payment, error) {
	if !n.Verify(r.serverKey) {
		metrics.WebhookNotifications.WithLabelValues("invalid_signature").Inc()
		log.WithField("order_id", n.OrderID).Warn("Webhook signature verification failed")
		return nil, &model.SignatureError{OrderID: n.OrderID}
	}

	status := midtrans.MapStatus(n.TransactionStatus, n.FraudStatus)
	upd := model.StatusUpdate{
		Status:     status,
		Method:     n.PaymentType,
		GatewayRef: n.TransactionID,
		Payload:    raw,
	}
	if status.Failed() {
		upd.Reason = "gateway reported " + n.TransactionStatus
	}

	p, applied, err := r.applyAndFanout(ctx, n.OrderID, upd)
	if err != nil {
		metrics.WebhookNotifications.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if applied {
		metrics.WebhookNotifications.WithLabelValues("applied").Inc()
	} else {
		metrics.WebhookNotifications.WithLabelValues("noop").Inc()
	}
	return p, nil
}

// PollAndApply queries the gateway for the transaction's current status and
// applies it. Used when no webhook arrived within the expected window.
func (r *Reconciler) PollAndApply(ctx context.Context, id string) (*model.Payment, error) {
	p, err := r.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	st, err := r.gateway.QueryStatus(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	status := midtrans.MapStatus(st.TransactionStatus, st.FraudStatus)
	raw, _ := json.Marshal(st)
	upd := model.StatusUpdate{
		Status:     status,
		Method:     st.PaymentType,
		GatewayRef: st.TransactionID,
		Payload:    raw,
	}
	if status.Failed() {
		upd.Reason = "gateway reported " + st.TransactionStatus
	}

	out, _, err := r.applyAndFanout(ctx, p.OrderID, upd)
	return out, err
}

// Cancel voids a pending payment at the gateway, then applies CANCEL.
func (r *Reconciler) Cancel(ctx context.Context, id string, userID uint, isAdmin bool) (*model.Payment, error) {
	p, err := r.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != userID {
		return nil, &model.NotFoundError{Resource: "payment", Key: id}
	}

	if err := r.gateway.Cancel(ctx, p.OrderID); err != nil {
		return nil, err
	}

	out, _, err := r.applyAndFanout(ctx, p.OrderID, model.StatusUpdate{
		Status: model.StatusCancel,
		Reason: "cancelled before payment",
	})
	return out, err
}

// Refund refunds a settled payment. amount == 0 or amount == the recorded
// amount refunds in full (REFUND); anything smaller is a PARTIAL_REFUND.
func (r *Reconciler) Refund(ctx context.Context, id string, amount int64, reason string) (*model.Payment, error) {
	p, err := r.store.PaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount < 0 || amount > p.Amount {
		return nil, &model.ValidationError{Violations: []string{"refund amount exceeds the paid amount"}}
	}

	target := model.StatusRefund
	if amount > 0 && amount < p.Amount {
		target = model.StatusPartialRefund
	}

	if err := r.gateway.Refund(ctx, p.OrderID, amount, reason); err != nil {
		return nil, err
	}

	out, _, err := r.applyAndFanout(ctx, p.OrderID, model.StatusUpdate{
		Status: target,
		Reason: reason,
	})
	return out, err
}

// applyAndFanout runs the store's atomic apply and, only when a transition
// was actually applied, invalidates caches and publishes the lifecycle
// event. Idempotent no-ops produce no side effects.
func (r *Reconciler) applyAndFanout(ctx context.Context, orderID string, upd model.StatusUpdate) (*model.Payment, bool, error) {
	p, applied, err := r.store.ApplyStatus(ctx, orderID, upd)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		return p, false, nil
	}

	metrics.StatusTransitions.WithLabelValues(string(p.Status)).Inc()
	r.cache.Invalidate(ctx, cache.UserPaymentsKey(p.UserID), cache.StatsKey)

	if event := eventFor(p.Status); event != "" && r.events != nil {
		data := map[string]interface{}{
			"payment_id":    p.ID,
			"order_id":      p.OrderID,
			"enrollment_id": p.EnrollmentID,
			"user_id":       p.UserID,
			"amount":        p.Amount,
			"status":        p.Status,
		}
		if p.PaidAt != nil {
			data["paid_at"] = p.PaidAt.Format(time.RFC3339)
		}
		r.events.Publish(event, data)
	}

	log.WithFields(log.Fields{
		"order_id": p.OrderID,
		"status":   p.Status,
	}).Info("Payment status applied")

	return p, true, nil
}

func eventFor(status model.PaymentStatus) string {
	switch {
	case status.Settled():
		return "payment.settled"
	case status.Failed():
		return "payment.failed"
	case status.Refunded():
		return "payment.refunded"
	}
	return ""
}
