package handlers

import (
	"errors"
	"net/http"

	"slotify/middleware"
	"slotify/models"
	"slotify/services/booking"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the appointment lifecycle endpoints.
type BookingHandler struct {
	Bookings booking.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: bookings}
}

type finalizeRequest struct {
	ServiceOfferingID string  `json:"serviceOfferingId" binding:"required"`
	Date              string  `json:"date" binding:"required"`
	FromTime          string  `json:"fromTime" binding:"required"`
	ToTime            string  `json:"toTime" binding:"required"`
	PaymentRef        string  `json:"paymentCorrelationId"`
	PaymentStatus     string  `json:"paymentStatus" binding:"required"`
	AmountPaid        float64 `json:"amountPaid"`
}

// FinalizeAppointment handles POST /appointments/finalize: converts the
// caller's reservation into a persisted appointment once payment resolved.
func (h *BookingHandler) FinalizeAppointment(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	paymentStatus := models.PaymentStatus(req.PaymentStatus)
	switch paymentStatus {
	case models.PaymentPaid, models.PaymentPending:
	default:
		utils.JSONError(c, http.StatusBadRequest, "paymentStatus must be paid or pending")
		return
	}

	appt, err := h.Bookings.Finalize(c.Request.Context(), booking.FinalizeRequest{
		SlotKey: models.SlotKey{
			ServiceOfferingID: req.ServiceOfferingID,
			Date:              req.Date,
			FromTime:          req.FromTime,
			ToTime:            req.ToTime,
		},
		HolderID:      middleware.CustomerID(c),
		PaymentRef:    req.PaymentRef,
		PaymentStatus: paymentStatus,
		AmountPaid:    req.AmountPaid,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrSlotBooked):
			utils.JSONError(c, http.StatusConflict, "slot is already booked")
		case errors.Is(err, booking.ErrReservationLost):
			// Fatal for this attempt: the caller must restart the
			// reservation flow before treating the charge as settled.
			utils.JSONError(c, http.StatusConflict, "reservation expired or lost; restart the booking flow")
		default:
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "appointment": appt})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelAppointment handles POST /appointments/:id/cancel.
func (h *BookingHandler) CancelAppointment(c *gin.Context) {
	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	appt, err := h.Bookings.Cancel(c.Request.Context(), c.Param("id"), middleware.CustomerID(c), req.Reason)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// UpdateAppointmentStatus handles PATCH /appointments/:id/status. Terminal
// statuses are routed through the cancel/reject paths so the slot-freed event
// always fires.
func (h *BookingHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	to := models.AppointmentStatus(req.Status)

	var (
		appt *models.Appointment
		err  error
	)
	switch to {
	case models.AppointmentCancelled:
		appt, err = h.Bookings.Cancel(ctx, id, middleware.CustomerID(c), req.Reason)
	case models.AppointmentRejected:
		appt, err = h.Bookings.Reject(ctx, id, req.Reason)
	case models.AppointmentConfirmed, models.AppointmentInProgress, models.AppointmentCompleted:
		appt, err = h.Bookings.Progress(ctx, id, to)
	default:
		utils.JSONError(c, http.StatusBadRequest, "unknown status: "+req.Status)
		return
	}
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
}

// MyAppointments handles GET /appointments/mine.
func (h *BookingHandler) MyAppointments(c *gin.Context) {
	appts, err := h.Bookings.ListMine(c.Request.Context(), middleware.CustomerID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appts})
}

// GetAppointment handles GET /appointments/:id.
func (h *BookingHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	if appt.CustomerID != middleware.CustomerID(c) {
		utils.JSONError(c, http.StatusNotFound, "appointment not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointment": appt})
}

func writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound):
		utils.JSONError(c, http.StatusNotFound, "appointment not found")
	case errors.Is(err, booking.ErrForbidden):
		utils.JSONError(c, http.StatusForbidden, "appointment belongs to another customer")
	case errors.Is(err, booking.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid status transition")
	default:
		utils.JSONError(c, http.StatusInternalServerError, err.Error())
	}
}
