package handlers

import (
	"errors"
	"net/http"

	"slotify/middleware"
	"slotify/services/waitlist"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// WaitlistHandler exposes the waitlist endpoints.
type WaitlistHandler struct {
	Waitlist waitlist.WaitlistService
}

// NewWaitlistHandler creates a new WaitlistHandler.
func NewWaitlistHandler(wl waitlist.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{Waitlist: wl}
}

type joinWaitlistRequest struct {
	CustomerID        string `json:"customerId"`
	ServiceOfferingID string `json:"serviceOfferingId" binding:"required"`
	PreferredDate     string `json:"preferredDate" binding:"required"`
	PreferredTime     string `json:"preferredTime"`
}

// Join handles POST /waitlist/join.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req joinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	customerID := middleware.CustomerID(c)
	if req.CustomerID != "" && req.CustomerID != customerID {
		utils.JSONError(c, http.StatusForbidden, "cannot join the waitlist for another customer")
		return
	}

	entry, err := h.Waitlist.Join(customerID, req.ServiceOfferingID, req.PreferredDate, req.PreferredTime)
	if err != nil {
		if errors.Is(err, waitlist.ErrDuplicateEntry) {
			utils.JSONError(c, http.StatusConflict, err.Error())
			return
		}
		utils.JSONError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": entry})
}

// Leave handles DELETE /waitlist/:id.
func (h *WaitlistHandler) Leave(c *gin.Context) {
	if err := h.Waitlist.Leave(c.Param("id"), middleware.CustomerID(c)); err != nil {
		if errors.Is(err, waitlist.ErrEntryNotFound) {
			utils.JSONError(c, http.StatusNotFound, err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to leave waitlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": true})
}

// Mine handles GET /waitlist/mine/:customerId. Customers can only read their
// own list.
func (h *WaitlistHandler) Mine(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID != middleware.CustomerID(c) {
		utils.JSONError(c, http.StatusForbidden, "cannot read another customer's waitlist")
		return
	}

	entries, err := h.Waitlist.ListMine(customerID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list waitlist entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}
