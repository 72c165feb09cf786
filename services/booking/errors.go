package booking

import "errors"

// ErrSlotBooked signals that a non-terminal appointment already claims the
// slot. Finalize uses it as the double-booking backstop, independent of lock
// state.
var ErrSlotBooked = errors.New("slot already carries an active appointment")

// ErrReservationLost signals a finalize against an expired or missing
// reservation. Fatal for this attempt: the caller must restart the
// reservation flow, never retry silently.
var ErrReservationLost = errors.New("reservation expired or no longer held")

// ErrAppointmentNotFound signals an operation against an unknown appointment.
var ErrAppointmentNotFound = errors.New("appointment not found")

// ErrForbidden signals an actor operating on an appointment they do not own.
var ErrForbidden = errors.New("appointment belongs to another customer")

// ErrInvalidTransition signals a status change the state machine does not allow.
var ErrInvalidTransition = errors.New("invalid appointment status transition")
