package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
)

const sweepBatchSize = 100

// ExpireStale applies EXPIRE to pending payments older than the payment
// window. A payment that settles while the sweep runs simply loses the race:
// the conditional apply rejects the expiry and the sweep moves on.
func (r *Reconciler) ExpireStale(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-r.expiry)
	stale, err := r.store.ListStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, p := range stale {
		_, applied, err := r.applyAndFanout(ctx, p.OrderID, model.StatusUpdate{
			Status: model.StatusExpire,
			Reason: "payment window expired",
		})
		if err != nil {
			var te *model.TransitionError
			if errors.As(err, &te) {
				continue
			}
			log.WithField("order_id", p.OrderID).Errorf("Expiry sweep failed: %v", err)
			continue
		}
		if applied {
			expired++
		}
	}
	return expired, nil
}

// RunExpirySweeper runs ExpireStale on a fixed interval until ctx is done.
func (r *Reconciler) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.ExpireStale(ctx)
			if err != nil {
				log.Errorf("Expiry sweep error: %v", err)
				continue
			}
			if n > 0 {
				log.WithField("expired", n).Info("Expired stale pending payments")
			}
		}
	}
}
