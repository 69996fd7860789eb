package main

import (
	"context"
	"log"
	"time"

	"bnbBack/internal/services"
)

const (
	chargeSyncTimeout = 30 * time.Second
	chargeSyncBatch   = 50
)

type chargeSyncer interface {
	Enabled() bool
	SyncPending(ctx context.Context, limit int) (int, error)
}

// startChargeSync periodically refreshes charges that may still change at the processor.
// It stops when ctx is cancelled.
func startChargeSync(ctx context.Context, svc chargeSyncer, interval time.Duration, infoLog, errorLog *log.Logger) {
	if svc == nil || !svc.Enabled() || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, chargeSyncTimeout)
			defer cancel()

			synced, err := svc.SyncPending(runCtx, chargeSyncBatch)
			if err != nil {
				errorLog.Printf("charge sync: %v", err)
				return
			}
			if synced > 0 {
				infoLog.Printf("charge sync: refreshed %d charges", synced)
			}
		}

		run()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}

var _ chargeSyncer = (*services.StripeService)(nil)
