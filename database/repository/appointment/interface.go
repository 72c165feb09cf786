package appointmentRepo

import (
	"errors"

	"slotify/models"
)

// ErrSlotOccupied is returned by Create when an appointment in an occupying
// status already exists for the same slot key.
var ErrSlotOccupied = errors.New("slot already carries an active appointment")

// AppointmentRepository defines data access for appointments.
type AppointmentRepository interface {
	// Create inserts a new appointment. The partial unique index on the slot
	// key makes the insert itself the double-booking guard: a second
	// occupying appointment for the same key fails with ErrSlotOccupied.
	Create(appt *models.Appointment) error
	// GetByID retrieves an appointment by its unique ID.
	GetByID(id string) (*models.Appointment, error)
	// FindActiveBySlot returns the occupying appointment for a slot key, or nil.
	FindActiveBySlot(key models.SlotKey) (*models.Appointment, error)
	// ListByCustomer returns a customer's appointments, newest first.
	ListByCustomer(customerID string) ([]models.Appointment, error)
	// UpdateStatus transitions an appointment's status conditionally: the
	// update applies only if the current status is one of allowedFrom.
	// Returns false when no document matched.
	UpdateStatus(id string, to models.AppointmentStatus, allowedFrom []models.AppointmentStatus, reason string) (bool, error)
}
