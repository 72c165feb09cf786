package slotlockRepo

import (
	"errors"
	"time"

	"slotify/models"
)

// ErrLockContended is returned by Acquire when a live reservation held by a
// different holder already covers the slot key.
var ErrLockContended = errors.New("slot lock held by another holder")

// AcquireOutcome describes what the atomic acquire actually did.
type AcquireOutcome string

const (
	OutcomeGranted  AcquireOutcome = "granted"  // fresh insert, or takeover of an expired record
	OutcomeExtended AcquireOutcome = "extended" // caller already held a live lock; TTL reset
)

// SlotLockRepository defines data access for slot reservations.
//
// Acquire must be a single atomic conditional write: the expiry check is part
// of the same operation as the insert/replace, never a separate read. All
// other methods treat records past expiresAt as logically absent.
type SlotLockRepository interface {
	// Acquire inserts res if the slot is free, or replaces the existing record
	// when it is expired or held by the same holder. Returns ErrLockContended
	// when a live foreign reservation exists.
	Acquire(res *models.SlotReservation) (AcquireOutcome, error)
	// Extend resets the expiry of the caller's live reservation and updates
	// its payment correlation id when non-empty. Returns false when the
	// caller holds no live reservation for the key.
	Extend(key models.SlotKey, holderID, paymentRef string, expiresAt time.Time) (bool, error)
	// GetBySlot returns the live reservation for a slot key, or nil.
	GetBySlot(key models.SlotKey) (*models.SlotReservation, error)
	// GetByPaymentRef returns the live reservation carrying the payment
	// correlation id, or nil.
	GetByPaymentRef(ref string) (*models.SlotReservation, error)
	// ListByHolder returns all live reservations held by a customer.
	ListByHolder(holderID string) ([]models.SlotReservation, error)
	// ListAll returns every reservation record, expired ones included
	// (admin view; the caller decides how to present staleness).
	ListAll() ([]models.SlotReservation, error)
	// Delete removes the reservation for a slot key. When holderID is
	// non-empty the deletion is restricted to that holder's record.
	Delete(key models.SlotKey, holderID string) (bool, error)
	// DeleteByPaymentRef removes the reservation matching a payment
	// correlation id, restricted to holderID when non-empty.
	DeleteByPaymentRef(ref, holderID string) (bool, error)
	// DeleteByID removes a reservation unconditionally (admin override).
	DeleteByID(id string) (bool, error)
	// DeleteAllByHolder bulk-releases every reservation held by a customer.
	DeleteAllByHolder(holderID string) (int64, error)
	// DeleteExpired sweeps records past their expiry. Storage hygiene only:
	// correctness never depends on the sweep having run.
	DeleteExpired() (int64, error)
}
