package models

import (
	"fmt"
	"time"
)

// SlotKey identifies a bookable time window for one service offering.
// It is the uniqueness boundary for both locking and booking and is never
// mutated once set on a record.
type SlotKey struct {
	ServiceOfferingID string `bson:"serviceOfferingId" json:"serviceOfferingId"`
	Date              string `bson:"date" json:"date"`         // "YYYY-MM-DD"
	FromTime          string `bson:"fromTime" json:"fromTime"` // "HH:MM"
	ToTime            string `bson:"toTime" json:"toTime"`     // "HH:MM"
}

// String renders the key in a stable form for logging.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s/%s-%s", k.ServiceOfferingID, k.Date, k.FromTime, k.ToTime)
}

// Validate checks that every component of the key is present.
func (k SlotKey) Validate() error {
	if k.ServiceOfferingID == "" || k.Date == "" || k.FromTime == "" || k.ToTime == "" {
		return fmt.Errorf("incomplete slot key: %s", k.String())
	}
	return nil
}

// SlotReservation is a time-bounded exclusive hold on a SlotKey prior to
// payment completion. At most one live (non-expired) reservation may exist
// per SlotKey; the store's unique index enforces this.
type SlotReservation struct {
	ID         string    `bson:"id" json:"id"`
	SlotKey    SlotKey   `bson:",inline" json:"slotKey"`
	HolderID   string    `bson:"holderId" json:"holderId"`
	PaymentRef string    `bson:"paymentRef,omitempty" json:"paymentRef,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt  time.Time `bson:"expiresAt" json:"expiresAt"`
}

// Live reports whether the reservation still holds the slot at the given
// instant. Expired records are logically absent even before any sweep
// physically removes them.
func (r *SlotReservation) Live(now time.Time) bool {
	return r != nil && now.Before(r.ExpiresAt)
}

// SlotAvailability is the read-only view returned by the check endpoint.
type SlotAvailability struct {
	Available   bool       `json:"available"`
	Locked      bool       `json:"locked"`
	Booked      bool       `json:"booked"`
	IsOwnLock   bool       `json:"isOwnLock,omitempty"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
}
