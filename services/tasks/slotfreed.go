package tasks

import (
	"encoding/json"

	"slotify/models"

	"github.com/hibiken/asynq"
)

// TypeSlotFreed is the task type for slot-freed events.
const TypeSlotFreed = "slot:freed"

// NewSlotFreedTask builds the asynq task carrying a slot-freed event. The
// queue gives the event at-least-once delivery to the waitlist notifier,
// decoupled from whichever request triggered it.
func NewSlotFreedTask(payload models.SlotFreedPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSlotFreed, b)
	opts := []asynq.Option{asynq.MaxRetry(10)}

	return task, opts, nil
}
