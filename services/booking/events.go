package booking

import (
	"context"
	"time"

	"slotify/models"
	"slotify/services/tasks"

	"github.com/hibiken/asynq"
)

// SlotFreedEmitter publishes slot-freed events for the waitlist notifier.
type SlotFreedEmitter interface {
	EmitSlotFreed(ctx context.Context, serviceOfferingID, date string) error
}

// AsynqSlotFreedEmitter enqueues slot-freed events on the shared Redis-backed
// task queue. Enqueueing is the only coupling between a cancellation and the
// notifications it triggers.
type AsynqSlotFreedEmitter struct {
	Client *asynq.Client
}

// EmitSlotFreed enqueues one slot-freed event.
func (e *AsynqSlotFreedEmitter) EmitSlotFreed(ctx context.Context, serviceOfferingID, date string) error {
	task, opts, err := tasks.NewSlotFreedTask(models.SlotFreedPayload{
		ServiceOfferingID: serviceOfferingID,
		Date:              date,
		FreedAt:           time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task, opts...)
	return err
}
