package slotlock

import (
	"errors"
	"fmt"
	"time"

	"slotify/models"
	"slotify/utils"

	appointmentRepo "slotify/database/repository/appointment"
	slotlockRepo "slotify/database/repository/slotlock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSlotLockService is the production implementation of SlotLockService.
// It never relies on a background sweep for correctness: the repository's
// conditional writes carry the expiry check, and the sweep only reclaims
// storage.
type DefaultSlotLockService struct {
	Locks        slotlockRepo.SlotLockRepository
	Appointments appointmentRepo.AppointmentRepository
}

// Acquire takes or refreshes the lock on a slot for holderID.
func (s *DefaultSlotLockService) Acquire(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, slotlockRepo.AcquireOutcome, error) {
	if err := key.Validate(); err != nil {
		return nil, "", err
	}

	// An occupying appointment trumps any lock state.
	appt, err := s.Appointments.FindActiveBySlot(key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check appointments for slot %s: %w", key, err)
	}
	if appt != nil {
		return nil, "", ErrSlotBooked
	}

	now := time.Now()
	res := &models.SlotReservation{
		ID:         uuid.New().String(),
		SlotKey:    key,
		HolderID:   holderID,
		PaymentRef: paymentRef,
		CreatedAt:  now,
		ExpiresAt:  now.Add(LockTTL),
	}

	// Two attempts: the blocking reservation may expire between the failed
	// conditional write and our conflict lookup.
	for attempt := 0; attempt < 2; attempt++ {
		outcome, err := s.Locks.Acquire(res)
		if err == nil {
			return res, outcome, nil
		}
		if !errors.Is(err, slotlockRepo.ErrLockContended) {
			return nil, "", err
		}

		current, lookupErr := s.Locks.GetBySlot(key)
		if lookupErr != nil {
			return nil, "", lookupErr
		}
		if current != nil {
			return nil, "", &SlotHeldError{HeldUntil: current.ExpiresAt}
		}
		// The conflicting lock expired in the meantime; retry once.
	}
	return nil, "", &SlotHeldError{HeldUntil: time.Now().Add(LockTTL)}
}

// Extend resets the TTL of the caller's live reservation.
func (s *DefaultSlotLockService) Extend(key models.SlotKey, holderID, paymentRef string) (*models.SlotReservation, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(LockTTL)
	ok, err := s.Locks.Extend(key, holderID, paymentRef, expiresAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockNotFound
	}

	res, err := s.Locks.GetBySlot(key)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrLockNotFound
	}
	return res, nil
}

// Release drops the caller's reservation by payment ref or slot key.
func (s *DefaultSlotLockService) Release(key *models.SlotKey, paymentRef, holderID string) error {
	var (
		released bool
		err      error
	)
	switch {
	case paymentRef != "":
		released, err = s.Locks.DeleteByPaymentRef(paymentRef, holderID)
	case key != nil:
		if err := key.Validate(); err != nil {
			return err
		}
		released, err = s.Locks.Delete(*key, holderID)
	default:
		return fmt.Errorf("release requires a slot key or a payment correlation id")
	}
	if err != nil {
		return err
	}
	if !released {
		return ErrLockNotFound
	}
	return nil
}

// ReleaseAllForHolder bulk-releases every reservation the caller holds.
func (s *DefaultSlotLockService) ReleaseAllForHolder(holderID string) (int64, error) {
	return s.Locks.DeleteAllByHolder(holderID)
}

// Status reports slot availability as seen by requesterID. Expired
// reservations are treated as free even before any sweep runs; the repository
// filters them out in the query itself.
func (s *DefaultSlotLockService) Status(key models.SlotKey, requesterID string) (*models.SlotAvailability, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	appt, err := s.Appointments.FindActiveBySlot(key)
	if err != nil {
		return nil, fmt.Errorf("failed to check appointments for slot %s: %w", key, err)
	}
	if appt != nil {
		return &models.SlotAvailability{Available: false, Booked: true}, nil
	}

	res, err := s.Locks.GetBySlot(key)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &models.SlotAvailability{Available: true}, nil
	}

	avail := &models.SlotAvailability{
		Available:   false,
		Locked:      true,
		LockedUntil: &res.ExpiresAt,
	}
	if requesterID != "" && res.HolderID == requesterID {
		avail.IsOwnLock = true
	}
	return avail, nil
}

// MyLocks lists the caller's live reservations.
func (s *DefaultSlotLockService) MyLocks(holderID string) ([]models.SlotReservation, error) {
	return s.Locks.ListByHolder(holderID)
}

// AdminList returns every reservation record, stale ones included.
func (s *DefaultSlotLockService) AdminList() ([]models.SlotReservation, error) {
	return s.Locks.ListAll()
}

// AdminRelease removes a reservation unconditionally, regardless of holder.
func (s *DefaultSlotLockService) AdminRelease(id string) error {
	released, err := s.Locks.DeleteByID(id)
	if err != nil {
		return err
	}
	if !released {
		return ErrLockNotFound
	}
	return nil
}

// SweepExpired reclaims storage held by expired reservations.
func (s *DefaultSlotLockService) SweepExpired() (int64, error) {
	deleted, err := s.Locks.DeleteExpired()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		utils.GetLogger().Info("swept expired slot locks", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
