package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotify/models"
	"slotify/services/loyalty"
	"slotify/utils"

	appointmentRepo "slotify/database/repository/appointment"
	slotlockRepo "slotify/database/repository/slotlock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the production implementation of BookingService.
type DefaultBookingService struct {
	Appointments appointmentRepo.AppointmentRepository
	Locks        slotlockRepo.SlotLockRepository
	Loyalty      loyalty.LoyaltyService
	Events       SlotFreedEmitter
}

// Finalize converts a live reservation into an appointment, then releases the
// reservation. The appointment is inserted first so there is never a window
// where neither record protects the slot; during the brief overlap a second
// holder's acquire is rejected by the appointment check, so both records
// never claim the slot for different holders.
func (s *DefaultBookingService) Finalize(ctx context.Context, req FinalizeRequest) (*models.Appointment, error) {
	if err := req.SlotKey.Validate(); err != nil {
		return nil, err
	}

	// Backstop: an occupying appointment wins regardless of lock state.
	existing, err := s.Appointments.FindActiveBySlot(req.SlotKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check appointments for slot %s: %w", req.SlotKey, err)
	}
	if existing != nil {
		return nil, ErrSlotBooked
	}

	res, err := s.matchReservation(req)
	if err != nil {
		return nil, err
	}
	if !res.Live(time.Now()) || res.HolderID != req.HolderID {
		return nil, ErrReservationLost
	}

	status := models.AppointmentPending
	if req.PaymentStatus == models.PaymentPaid {
		status = models.AppointmentConfirmed
	}

	appt := &models.Appointment{
		ID:            uuid.New().String(),
		SlotKey:       req.SlotKey,
		CustomerID:    req.HolderID,
		Status:        status,
		PaymentStatus: req.PaymentStatus,
		PaymentRef:    req.PaymentRef,
		AmountPaid:    req.AmountPaid,
	}
	if err := s.Appointments.Create(appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrSlotOccupied) {
			return nil, ErrSlotBooked
		}
		return nil, err
	}

	// Release the reservation now that the appointment claims the slot.
	if _, err := s.Locks.Delete(req.SlotKey, req.HolderID); err != nil {
		// The lock will lapse at its TTL anyway; the appointment already
		// protects the slot.
		utils.GetLogger().Warn("failed to release reservation after finalize",
			zap.String("slot", req.SlotKey.String()), zap.Error(err))
	}

	s.awardPoints(appt)
	return appt, nil
}

// matchReservation finds the caller's reservation by payment ref when
// supplied, falling back to the slot key. A reservation located by ref must
// still cover the requested slot: a ref bound to some other slot's
// reservation never satisfies finalize for this one.
func (s *DefaultBookingService) matchReservation(req FinalizeRequest) (*models.SlotReservation, error) {
	var (
		res *models.SlotReservation
		err error
	)
	if req.PaymentRef != "" {
		res, err = s.Locks.GetByPaymentRef(req.PaymentRef)
		if err != nil {
			return nil, err
		}
		if res != nil && res.SlotKey != req.SlotKey {
			res = nil
		}
	}
	if res == nil {
		res, err = s.Locks.GetBySlot(req.SlotKey)
		if err != nil {
			return nil, err
		}
	}
	if res == nil {
		return nil, ErrReservationLost
	}
	return res, nil
}

// awardPoints credits the loyalty ledger after a paid finalize. Bookkeeping
// failures are logged and swallowed: a payment is never unwound because the
// ledger was unavailable.
func (s *DefaultBookingService) awardPoints(appt *models.Appointment) {
	if s.Loyalty == nil || appt.PaymentStatus != models.PaymentPaid {
		return
	}
	desc := fmt.Sprintf("Points earned for appointment on %s", appt.SlotKey.Date)
	if _, err := s.Loyalty.Award(appt.CustomerID, appt.AmountPaid, appt.ID, desc); err != nil {
		utils.GetLogger().Error("loyalty award failed",
			zap.String("customerId", appt.CustomerID),
			zap.String("appointmentId", appt.ID),
			zap.Error(err))
	}
}

// Cancel moves an appointment to cancelled and frees its slot.
func (s *DefaultBookingService) Cancel(ctx context.Context, appointmentID, actorID, reason string) (*models.Appointment, error) {
	return s.terminate(ctx, appointmentID, actorID, models.AppointmentCancelled, reason)
}

// Reject moves an appointment to rejected and frees its slot.
func (s *DefaultBookingService) Reject(ctx context.Context, appointmentID, reason string) (*models.Appointment, error) {
	return s.terminate(ctx, appointmentID, "", models.AppointmentRejected, reason)
}

// terminate applies a terminal status and, on success, emits the slot-freed
// event. The emission is fire-and-forget with respect to the caller: enqueue
// failures are logged, never surfaced as a cancellation failure.
func (s *DefaultBookingService) terminate(ctx context.Context, appointmentID, actorID string, to models.AppointmentStatus, reason string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if actorID != "" && appt.CustomerID != actorID {
		return nil, ErrForbidden
	}
	if !models.CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.Appointments.UpdateStatus(appointmentID, to, []models.AppointmentStatus{appt.Status}, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Raced with another transition; re-read and report the conflict.
		return nil, ErrInvalidTransition
	}
	appt.Status = to
	appt.CancelReason = reason

	s.emitSlotFreed(ctx, appt)
	return appt, nil
}

// emitSlotFreed publishes the freed-slot event for the waitlist notifier.
func (s *DefaultBookingService) emitSlotFreed(ctx context.Context, appt *models.Appointment) {
	if s.Events == nil {
		return
	}
	if err := s.Events.EmitSlotFreed(ctx, appt.SlotKey.ServiceOfferingID, appt.SlotKey.Date); err != nil {
		utils.GetLogger().Error("failed to enqueue slot-freed event",
			zap.String("serviceOfferingId", appt.SlotKey.ServiceOfferingID),
			zap.String("date", appt.SlotKey.Date),
			zap.Error(err))
	}
}

// Progress advances an appointment along the non-terminal path.
func (s *DefaultBookingService) Progress(ctx context.Context, appointmentID string, to models.AppointmentStatus) (*models.Appointment, error) {
	switch to {
	case models.AppointmentCancelled, models.AppointmentRejected:
		return nil, fmt.Errorf("use cancel or reject for terminal transitions")
	}

	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if !models.CanTransition(appt.Status, to) {
		return nil, ErrInvalidTransition
	}

	ok, err := s.Appointments.UpdateStatus(appointmentID, to, []models.AppointmentStatus{appt.Status}, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}
	appt.Status = to
	return appt, nil
}

// GetByID fetches one appointment.
func (s *DefaultBookingService) GetByID(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

// ListMine lists a customer's appointments, newest first.
func (s *DefaultBookingService) ListMine(ctx context.Context, customerID string) ([]models.Appointment, error) {
	return s.Appointments.ListByCustomer(customerID)
}
