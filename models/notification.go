package models

import "time"

// SlotFreedPayload is the body of the slot-freed event enqueued whenever a
// previously occupied slot becomes available again.
type SlotFreedPayload struct {
	ServiceOfferingID string    `json:"serviceOfferingId"`
	Date              string    `json:"date"`
	FreedAt           time.Time `json:"freedAt"`
}

// CustomerDevice stores the push token registered by a customer's app.
type CustomerDevice struct {
	CustomerID string    `bson:"customerId" json:"customerId"`
	FCMToken   string    `bson:"fcmToken" json:"fcmToken"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
