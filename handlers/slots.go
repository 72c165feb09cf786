package handlers

import (
	"errors"
	"net/http"

	"slotify/middleware"
	"slotify/models"
	"slotify/services/slotlock"
	"slotify/utils"

	slotlockRepo "slotify/database/repository/slotlock"

	"github.com/gin-gonic/gin"
)

// SlotLockHandler exposes the slot reservation endpoints.
type SlotLockHandler struct {
	Locks slotlock.SlotLockService
}

// NewSlotLockHandler creates a new SlotLockHandler.
func NewSlotLockHandler(locks slotlock.SlotLockService) *SlotLockHandler {
	return &SlotLockHandler{Locks: locks}
}

type lockSlotRequest struct {
	ServiceOfferingID string `json:"serviceOfferingId" binding:"required"`
	Date              string `json:"date" binding:"required"`
	FromTime          string `json:"fromTime" binding:"required"`
	ToTime            string `json:"toTime" binding:"required"`
	PaymentRef        string `json:"paymentCorrelationId"`
}

func (r lockSlotRequest) slotKey() models.SlotKey {
	return models.SlotKey{
		ServiceOfferingID: r.ServiceOfferingID,
		Date:              r.Date,
		FromTime:          r.FromTime,
		ToTime:            r.ToTime,
	}
}

// LockSlot handles POST /slots/lock.
func (h *SlotLockHandler) LockSlot(c *gin.Context) {
	var req lockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	holderID := middleware.CustomerID(c)

	res, outcome, err := h.Locks.Acquire(req.slotKey(), holderID, req.PaymentRef)
	if err != nil {
		var held *slotlock.SlotHeldError
		switch {
		case errors.As(err, &held):
			c.JSON(http.StatusConflict, gin.H{
				"success":     false,
				"message":     "slot is locked by another customer",
				"lockedUntil": held.HeldUntil,
			})
		case errors.Is(err, slotlock.ErrSlotBooked):
			utils.JSONError(c, http.StatusConflict, "slot is already booked")
		default:
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	status := http.StatusCreated
	if outcome == slotlockRepo.OutcomeExtended {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":     true,
		"reservation": res,
		"outcome":     outcome,
	})
}

// ExtendSlot handles POST /slots/extend. It pushes out the expiry of the
// caller's live reservation without going through a full re-lock.
func (h *SlotLockHandler) ExtendSlot(c *gin.Context) {
	var req lockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	res, err := h.Locks.Extend(req.slotKey(), middleware.CustomerID(c), req.PaymentRef)
	if err != nil {
		if errors.Is(err, slotlock.ErrLockNotFound) {
			utils.JSONError(c, http.StatusNotFound, "no live reservation to extend")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reservation": res})
}

type unlockSlotRequest struct {
	ServiceOfferingID string `json:"serviceOfferingId"`
	Date              string `json:"date"`
	FromTime          string `json:"fromTime"`
	ToTime            string `json:"toTime"`
	PaymentRef        string `json:"paymentCorrelationId"`
}

// UnlockSlot handles POST /slots/unlock. The reservation is addressed either
// by payment correlation id or by slot key; either way only the caller's own
// lock is released.
func (h *SlotLockHandler) UnlockSlot(c *gin.Context) {
	var req unlockSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	holderID := middleware.CustomerID(c)

	var key *models.SlotKey
	if req.PaymentRef == "" {
		key = &models.SlotKey{
			ServiceOfferingID: req.ServiceOfferingID,
			Date:              req.Date,
			FromTime:          req.FromTime,
			ToTime:            req.ToTime,
		}
	}

	if err := h.Locks.Release(key, req.PaymentRef, holderID); err != nil {
		if errors.Is(err, slotlock.ErrLockNotFound) {
			utils.JSONError(c, http.StatusNotFound, "no matching reservation found")
			return
		}
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "released": true})
}

// CheckSlot handles GET /slots/check.
func (h *SlotLockHandler) CheckSlot(c *gin.Context) {
	key := models.SlotKey{
		ServiceOfferingID: c.Query("serviceOfferingId"),
		Date:              c.Query("date"),
		FromTime:          c.Query("fromTime"),
		ToTime:            c.Query("toTime"),
	}
	if err := key.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}

	avail, err := h.Locks.Status(key, middleware.CustomerID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to check slot availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"availability": avail,
	})
}

// MyLocks handles GET /slots/my-locks.
func (h *SlotLockHandler) MyLocks(c *gin.Context) {
	locks, err := h.Locks.MyLocks(middleware.CustomerID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "locks": locks})
}

// ReleaseMyLocks handles DELETE /slots/my-locks.
func (h *SlotLockHandler) ReleaseMyLocks(c *gin.Context) {
	released, err := h.Locks.ReleaseAllForHolder(middleware.CustomerID(c))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to release reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "released": released})
}
