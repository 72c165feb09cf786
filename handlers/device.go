package handlers

import (
	"net/http"

	"slotify/middleware"
	"slotify/utils"

	deviceRepo "slotify/database/repository/device"

	"github.com/gin-gonic/gin"
)

// DeviceHandler registers customer device push tokens.
type DeviceHandler struct {
	Devices deviceRepo.DeviceRepository
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(devices deviceRepo.DeviceRepository) *DeviceHandler {
	return &DeviceHandler{Devices: devices}
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// UpdateFCMToken handles PUT /devices/fcm-token.
func (h *DeviceHandler) UpdateFCMToken(c *gin.Context) {
	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	if err := h.Devices.UpsertToken(middleware.CustomerID(c), req.FCMToken); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to update device token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
