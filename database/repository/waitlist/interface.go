package waitlistRepo

import (
	"errors"

	"slotify/models"
)

// ErrDuplicateEntry is returned by Create when the customer already has an
// active entry for the same (serviceOfferingId, preferredDate).
var ErrDuplicateEntry = errors.New("active waitlist entry already exists")

// WaitlistRepository defines data access for waitlist entries.
type WaitlistRepository interface {
	// Create inserts a new active entry. A partial unique index rejects a
	// second active entry for the same (customerId, serviceOfferingId,
	// preferredDate) triple with ErrDuplicateEntry.
	Create(entry *models.WaitlistEntry) error
	// ListActive returns all active entries matching a freed slot's
	// (serviceOfferingId, date).
	ListActive(serviceOfferingID, date string) ([]models.WaitlistEntry, error)
	// MarkNotified transitions an entry from active to notified. The
	// condition lives in the filter so an entry can never be notified twice
	// for the same event. Returns false when the entry was not active.
	MarkNotified(id string) (bool, error)
	// Delete removes an entry, restricted to its owner.
	Delete(id, customerID string) (bool, error)
	// ListByCustomer returns all entries for a customer, newest first.
	ListByCustomer(customerID string) ([]models.WaitlistEntry, error)
}
