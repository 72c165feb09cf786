package routes

import (
	"net/http"

	"slotify/handlers"
	"slotify/middleware"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Slots    *handlers.SlotLockHandler
	Bookings *handlers.BookingHandler
	Waitlist *handlers.WaitlistHandler
	Loyalty  *handlers.LoyaltyHandler
	Payments *handlers.PaymentHandler
	Devices  *handlers.DeviceHandler
	Admin    *handlers.AdminHandler
}

// SetupRoutes registers all API routes on the given engine.
func SetupRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "health": utils.GetHealthStatus()})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/")
	auth.Use(middleware.CustomerAuthMiddleware())
	{
		slots := auth.Group("/slots")
		{
			slots.POST("/lock", h.Slots.LockSlot)
			slots.POST("/extend", h.Slots.ExtendSlot)
			slots.POST("/unlock", h.Slots.UnlockSlot)
			slots.GET("/check", h.Slots.CheckSlot)
			slots.GET("/my-locks", h.Slots.MyLocks)
			slots.DELETE("/my-locks", h.Slots.ReleaseMyLocks)
		}

		appointments := auth.Group("/appointments")
		{
			appointments.POST("/finalize", h.Bookings.FinalizeAppointment)
			appointments.GET("/mine", h.Bookings.MyAppointments)
			appointments.GET("/:id", h.Bookings.GetAppointment)
			appointments.POST("/:id/cancel", h.Bookings.CancelAppointment)
			appointments.PATCH("/:id/status", h.Bookings.UpdateAppointmentStatus)
		}

		waitlist := auth.Group("/waitlist")
		{
			waitlist.POST("/join", h.Waitlist.Join)
			waitlist.DELETE("/:id", h.Waitlist.Leave)
			waitlist.GET("/mine/:customerId", h.Waitlist.Mine)
		}

		loyalty := auth.Group("/loyalty")
		{
			loyalty.POST("/redeem", h.Loyalty.Redeem)
			loyalty.GET("/:customerId", h.Loyalty.GetAccount)
			loyalty.GET("/:customerId/history", h.Loyalty.GetHistory)
		}

		auth.POST("/payments/intent", h.Payments.CreatePaymentIntent)
		auth.PUT("/devices/fcm-token", h.Devices.UpdateFCMToken)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		admin.GET("/slots/locks", h.Admin.ListLocks)
		admin.DELETE("/slots/locks/:id", h.Admin.ReleaseLock)
		admin.DELETE("/slots/expired", h.Admin.SweepExpired)
	}
}
