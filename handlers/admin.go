package handlers

import (
	"errors"
	"net/http"

	"slotify/services/slotlock"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the operator surface for slot locks.
type AdminHandler struct {
	Locks slotlock.SlotLockService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(locks slotlock.SlotLockService) *AdminHandler {
	return &AdminHandler{Locks: locks}
}

// ListLocks handles GET /admin/slots/locks. Returns every reservation record,
// stale ones included, so operators can see what the sweeper has not yet reclaimed.
func (h *AdminHandler) ListLocks(c *gin.Context) {
	locks, err := h.Locks.AdminList()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "locks": locks})
}

// ReleaseLock handles DELETE /admin/slots/locks/:id — the unconditional
// override release, ignoring lock ownership.
func (h *AdminHandler) ReleaseLock(c *gin.Context) {
	id := c.Param("id")
	if err := h.Locks.AdminRelease(id); err != nil {
		if errors.Is(err, slotlock.ErrLockNotFound) {
			utils.JSONError(c, http.StatusNotFound, "reservation not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to release reservation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "released": true})
}

// SweepExpired handles DELETE /admin/slots/expired — the manual sweep.
func (h *AdminHandler) SweepExpired(c *gin.Context) {
	deleted, err := h.Locks.SweepExpired()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to sweep expired reservations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}
