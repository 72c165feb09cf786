package models

import "time"

// WaitlistStatus is the lifecycle state of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistActive   WaitlistStatus = "active"
	WaitlistNotified WaitlistStatus = "notified"
)

// WaitlistEntry records a customer waiting for a (serviceOfferingId, date)
// slot to free up. An entry transitions to notified exactly once per freed-slot
// event that reaches it with a successful push send; it never returns to
// active automatically.
type WaitlistEntry struct {
	ID                string         `bson:"id" json:"id"`
	CustomerID        string         `bson:"customerId" json:"customerId"`
	ServiceOfferingID string         `bson:"serviceOfferingId" json:"serviceOfferingId"`
	PreferredDate     string         `bson:"preferredDate" json:"preferredDate"` // "YYYY-MM-DD"
	PreferredTime     string         `bson:"preferredTime,omitempty" json:"preferredTime,omitempty"`
	Status            WaitlistStatus `bson:"status" json:"status"`
	NotifiedAt        *time.Time     `bson:"notifiedAt,omitempty" json:"notifiedAt,omitempty"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
}
