package slotlock

import (
	"errors"
	"fmt"
	"time"
)

// ErrSlotBooked signals that a non-terminal appointment already claims the slot.
var ErrSlotBooked = errors.New("slot is already booked")

// ErrLockNotFound signals that no matching reservation exists for the caller.
var ErrLockNotFound = errors.New("no reservation found")

// SlotHeldError signals that another customer currently holds the slot.
type SlotHeldError struct {
	HeldUntil time.Time
}

func (e *SlotHeldError) Error() string {
	return fmt.Sprintf("slot is locked by another customer until %s", e.HeldUntil.Format(time.RFC3339))
}
