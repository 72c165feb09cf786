package models

import "time"

// AppointmentStatus is the booking lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in-progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentRejected   AppointmentStatus = "rejected"
)

// OccupyingStatuses are the states in which an appointment claims its slot.
// Kept as a slice because the store filters with $in/$nin on it.
var OccupyingStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentConfirmed,
	AppointmentInProgress,
}

// Terminal reports whether the status frees the slot.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentCompleted, AppointmentCancelled, AppointmentRejected:
		return true
	}
	return false
}

// Occupying reports whether an appointment in this status still claims its slot.
// Note completed is terminal for the lifecycle but the service already happened,
// so the slot is in the past; only cancelled/rejected ever free a future slot.
func (s AppointmentStatus) Occupying() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentInProgress:
		return true
	}
	return false
}

// allowedTransitions is the booking state machine:
// pending → confirmed → {in-progress → completed} | cancelled | rejected.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:    {AppointmentConfirmed, AppointmentCancelled, AppointmentRejected},
	AppointmentConfirmed:  {AppointmentInProgress, AppointmentCancelled, AppointmentRejected},
	AppointmentInProgress: {AppointmentCompleted, AppointmentCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatus tracks the payment side of an appointment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Appointment is a persisted booking for one SlotKey. At most one appointment
// in an occupying status may exist per SlotKey; the store's partial unique
// index enforces this jointly with the reservation invariant.
type Appointment struct {
	ID            string            `bson:"id" json:"id"`
	SlotKey       SlotKey           `bson:",inline" json:"slotKey"`
	CustomerID    string            `bson:"customerId" json:"customerId"`
	Status        AppointmentStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`
	PaymentRef    string            `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	AmountPaid    float64           `bson:"amountPaid,omitempty" json:"amountPaid,omitempty"`
	CancelReason  string            `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}
