package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"slotify/middleware"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentHandler issues payment intents and the correlation ids that tie a
// charge back to a slot reservation.
type PaymentHandler struct{}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

type paymentIntentRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
}

// paymentSession is the cached record binding a correlation id to a customer
// and an intent. It expires alongside the slot lock it backs.
type paymentSession struct {
	CustomerID      string    `json:"customerId"`
	PaymentIntentID string    `json:"paymentIntentId"`
	Amount          float64   `json:"amount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreatePaymentIntent handles POST /payments/intent. It creates a Stripe
// payment intent and returns a correlation id the client uses when locking
// and finalizing the slot.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}
	customerID := middleware.CustomerID(c)
	correlationID := uuid.New().String()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount * 100)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("customerId", customerID)
	params.AddMetadata("paymentCorrelationId", correlationID)

	intent, err := paymentintent.New(params)
	if err != nil {
		utils.GetLogger().Error("Failed to create payment intent",
			zap.String("customerId", customerID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "failed to create payment intent")
		return
	}

	session := paymentSession{
		CustomerID:      customerID,
		PaymentIntentID: intent.ID,
		Amount:          req.Amount,
		CreatedAt:       time.Now(),
	}
	raw, _ := json.Marshal(session)
	key := utils.PaymentSessionPrefix + correlationID
	if err := utils.GetCacheClient().Set(c.Request.Context(), key, raw, utils.PaymentSessionTTL).Err(); err != nil {
		// The session cache is advisory; finalize still verifies the lock.
		utils.GetLogger().Warn("Failed to cache payment session",
			zap.String("correlationId", correlationID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":              true,
		"paymentCorrelationId": correlationID,
		"clientSecret":         intent.ClientSecret,
		"amount":               req.Amount,
		"currency":             currency,
	})
}
