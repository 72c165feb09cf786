package waitlist

import (
	"context"
	"errors"
	"fmt"

	"slotify/models"
	"slotify/services/notification"
	"slotify/utils"

	waitlistRepo "slotify/database/repository/waitlist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateEntry signals a join for a triple the customer already waits on.
var ErrDuplicateEntry = errors.New("already on the waitlist for this service and date")

// ErrEntryNotFound signals a leave against an unknown or foreign entry.
var ErrEntryNotFound = errors.New("waitlist entry not found")

// WaitlistService matches freed slots to waiting customers.
type WaitlistService interface {
	// Join creates an active entry; duplicates of an active
	// (customerId, serviceOfferingId, preferredDate) triple are rejected.
	Join(customerID, serviceOfferingID, preferredDate, preferredTime string) (*models.WaitlistEntry, error)
	// Leave removes the caller's entry.
	Leave(id, customerID string) error
	// ListMine lists a customer's entries, newest first.
	ListMine(customerID string) ([]models.WaitlistEntry, error)
	// OnSlotFreed handles one slot-freed event: notify every matching active
	// entry, marking each notified only on confirmed send success.
	OnSlotFreed(ctx context.Context, serviceOfferingID, date string) error
}

// DefaultWaitlistService is the production implementation of WaitlistService.
type DefaultWaitlistService struct {
	Repo   waitlistRepo.WaitlistRepository
	Pusher notification.PushSender
}

// Join creates an active waitlist entry.
func (s *DefaultWaitlistService) Join(customerID, serviceOfferingID, preferredDate, preferredTime string) (*models.WaitlistEntry, error) {
	if customerID == "" || serviceOfferingID == "" || preferredDate == "" {
		return nil, fmt.Errorf("customerId, serviceOfferingId and preferredDate are required")
	}

	entry := &models.WaitlistEntry{
		ID:                uuid.New().String(),
		CustomerID:        customerID,
		ServiceOfferingID: serviceOfferingID,
		PreferredDate:     preferredDate,
		PreferredTime:     preferredTime,
	}
	if err := s.Repo.Create(entry); err != nil {
		if errors.Is(err, waitlistRepo.ErrDuplicateEntry) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return entry, nil
}

// Leave removes the caller's entry.
func (s *DefaultWaitlistService) Leave(id, customerID string) error {
	deleted, err := s.Repo.Delete(id, customerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	return nil
}

// ListMine lists a customer's entries, newest first.
func (s *DefaultWaitlistService) ListMine(customerID string) ([]models.WaitlistEntry, error) {
	return s.Repo.ListByCustomer(customerID)
}

// OnSlotFreed notifies every active entry matching the freed slot. Entries
// are processed independently: a failed push leaves that entry active so a
// later freed-slot event can retry it, and never blocks the others. The
// conditional MarkNotified guarantees no entry is notified twice for the
// same event.
func (s *DefaultWaitlistService) OnSlotFreed(ctx context.Context, serviceOfferingID, date string) error {
	logger := utils.GetLogger()

	entries, err := s.Repo.ListActive(serviceOfferingID, date)
	if err != nil {
		// Infrastructure failure: let the task queue redeliver the event.
		return fmt.Errorf("failed to load waitlist for %s/%s: %w", serviceOfferingID, date, err)
	}
	if len(entries) == 0 {
		return nil
	}

	title := "A slot just opened up!"
	body := fmt.Sprintf("A time slot for %s on %s is now available. Book it before someone else does.", serviceOfferingID, date)

	for _, entry := range entries {
		data := map[string]string{
			"type":              "slot_freed",
			"serviceOfferingId": serviceOfferingID,
			"date":              date,
		}
		if err := s.Pusher.SendPush(ctx, entry.CustomerID, title, body, data); err != nil {
			logger.Warn("waitlist push failed; entry stays active",
				zap.String("entryId", entry.ID),
				zap.String("customerId", entry.CustomerID),
				zap.Error(err))
			continue
		}
		if _, err := s.Repo.MarkNotified(entry.ID); err != nil {
			logger.Error("failed to mark waitlist entry notified",
				zap.String("entryId", entry.ID), zap.Error(err))
		}
	}
	return nil
}
