package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"slotify/middleware"
	"slotify/services/loyalty"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// LoyaltyHandler exposes the loyalty ledger endpoints.
type LoyaltyHandler struct {
	Loyalty loyalty.LoyaltyService
}

// NewLoyaltyHandler creates a new LoyaltyHandler.
func NewLoyaltyHandler(ls loyalty.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{Loyalty: ls}
}

// GetAccount handles GET /loyalty/:customerId.
func (h *LoyaltyHandler) GetAccount(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID != middleware.CustomerID(c) {
		utils.JSONError(c, http.StatusForbidden, "cannot read another customer's loyalty account")
		return
	}

	acc, err := h.Loyalty.GetAccount(customerID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load loyalty account")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": acc})
}

// GetHistory handles GET /loyalty/:customerId/history?page=&limit=.
func (h *LoyaltyHandler) GetHistory(c *gin.Context) {
	customerID := c.Param("customerId")
	if customerID != middleware.CustomerID(c) {
		utils.JSONError(c, http.StatusForbidden, "cannot read another customer's loyalty history")
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.Loyalty.GetHistory(customerID, page, limit)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load loyalty history")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"page":    page,
		"limit":   limit,
	})
}

type redeemRequest struct {
	CustomerID  string `json:"customerId"`
	Points      int64  `json:"points" binding:"required"`
	Description string `json:"description"`
}

// Redeem handles POST /loyalty/redeem.
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	customerID := middleware.CustomerID(c)
	if req.CustomerID != "" && req.CustomerID != customerID {
		utils.JSONError(c, http.StatusForbidden, "cannot redeem another customer's points")
		return
	}

	result, err := h.Loyalty.Redeem(customerID, req.Points, req.Description)
	if err != nil {
		var short *loyalty.InsufficientBalanceError
		switch {
		case errors.Is(err, loyalty.ErrInvalidAmount):
			utils.JSONError(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &short):
			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"message":   short.Error(),
				"available": short.Available,
				"requested": short.Requested,
			})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to redeem points")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"account": result.Account,
		"value":   result.Value,
	})
}
