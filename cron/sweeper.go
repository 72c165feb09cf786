package cron

import (
	"context"
	"log"
	"time"

	"slotify/services/slotlock"
)

// RunLockSweeper periodically removes expired slot reservations. This is
// storage hygiene only: every read and write path already treats expired
// records as absent, so the sweep interval has no bearing on correctness.
func RunLockSweeper(ctx context.Context, lockSvc slotlock.SlotLockService) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	log.Println("[LockSweeper] started: sweeping expired slot locks every 1 minute")

	for {
		select {
		case <-ctx.Done():
			log.Println("[LockSweeper] stopped.")
			return
		case <-ticker.C:
			if _, err := lockSvc.SweepExpired(); err != nil {
				log.Printf("[LockSweeper] sweep failed: %v", err)
			}
		}
	}
}
