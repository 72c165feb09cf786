package booking

import (
	"context"

	"slotify/models"
)

// FinalizeRequest carries everything needed to convert a held reservation
// into a persisted appointment.
type FinalizeRequest struct {
	SlotKey       models.SlotKey
	HolderID      string
	PaymentRef    string
	PaymentStatus models.PaymentStatus
	AmountPaid    float64
}

// BookingService reconciles lock state with persisted appointments and drives
// the appointment lifecycle. Any transition that frees a previously occupied
// slot emits a slot-freed event toward the waitlist notifier.
type BookingService interface {
	// Finalize converts the caller's live reservation into an appointment
	// and releases the lock. Fails with ErrReservationLost when the
	// reservation expired or was never held, and with ErrSlotBooked when an
	// occupying appointment already exists for the key.
	Finalize(ctx context.Context, req FinalizeRequest) (*models.Appointment, error)
	// Cancel moves an appointment to cancelled on behalf of its owner (or an
	// admin when actorID is empty) and emits a slot-freed event.
	Cancel(ctx context.Context, appointmentID, actorID, reason string) (*models.Appointment, error)
	// Reject moves a pending/confirmed appointment to rejected (vendor or
	// admin decision) and emits a slot-freed event.
	Reject(ctx context.Context, appointmentID, reason string) (*models.Appointment, error)
	// Progress advances an appointment along
	// pending → confirmed → in-progress → completed.
	Progress(ctx context.Context, appointmentID string, to models.AppointmentStatus) (*models.Appointment, error)
	// GetByID fetches one appointment.
	GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error)
	// ListMine lists a customer's appointments, newest first.
	ListMine(ctx context.Context, customerID string) ([]models.Appointment, error)
}
