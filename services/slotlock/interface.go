package slotlock

import (
	"time"

	"slotify/models"

	slotlockRepo "slotify/database/repository/slotlock"
)

// LockTTL bounds the lifetime of every reservation. No payment attempt may
// hold a slot longer than this; after expiry the slot is up for grabs again
// regardless of the original payment's fate.
const LockTTL = 10 * time.Minute

// SlotLockService owns ephemeral, time-bounded reservations on slot keys.
// It is the mutual-exclusion primitive of the booking flow.
type SlotLockService interface {
	// Acquire takes or refreshes the lock on a slot for holderID. Returns
	// the reservation plus whether it was freshly granted or an extension of
	// the caller's existing hold. Fails with ErrSlotBooked when an occupying
	// appointment exists, or *SlotHeldError when another live holder is in place.
	Acquire(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, slotlockRepo.AcquireOutcome, error)
	// Extend resets the TTL of the caller's live reservation.
	Extend(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, error)
	// Release drops the caller's reservation, addressed either by payment
	// correlation id (preferred) or by slot key.
	Release(key *models.SlotKey, paymentRef, holderID string) error
	// ReleaseAllForHolder bulk-releases every reservation the caller holds.
	ReleaseAllForHolder(holderID string) (int64, error)
	// Status reports slot availability as seen by requesterID, applying the
	// same treat-expired-as-free rule as Acquire.
	Status(key models.SlotKey, requesterID string) (*models.SlotAvailability, error)
	// MyLocks lists the caller's live reservations.
	MyLocks(holderID string) ([]models.SlotReservation, error)

	// Admin surface.
	AdminList() ([]models.SlotReservation, error)
	AdminRelease(id string) error
	SweepExpired() (int64, error)
}
