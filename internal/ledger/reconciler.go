package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/slh-community/slh-bot/internal/store"
)

// Reconciler periodically sweeps all wallets and verifies each balance
// against its transaction log.
type Reconciler struct {
	service  *Service
	store    store.Store
	log      *slog.Logger
	interval time.Duration
}

// NewReconciler constructs a Reconciler. A non-positive interval
// disables the loop.
func NewReconciler(service *Service, st store.Store, log *slog.Logger, interval time.Duration) *Reconciler {
	if log == nil {
		log = slog.Default()
	}

	return &Reconciler{
		service:  service,
		store:    st,
		log:      log,
		interval: interval,
	}
}

// Run starts the sweep loop until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reconciler) sweep(ctx context.Context) {
	wallets, err := r.store.ListWallets(ctx)
	if err != nil {
		r.log.Error("reconciler failed to list wallets", slog.Any("error", err))
		return
	}

	mismatches := 0
	for _, wallet := range wallets {
		if err := r.service.Reconcile(ctx, wallet.ID); err != nil {
			mismatches++
		}
	}

	if mismatches > 0 {
		r.log.Warn("reconcile sweep finished with mismatches",
			slog.Int("wallets", len(wallets)),
			slog.Int("mismatches", mismatches),
		)
		return
	}

	r.log.Debug("reconcile sweep clean", slog.Int("wallets", len(wallets)))
}
