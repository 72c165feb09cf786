package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotify/config"
	"slotify/models"
	"slotify/services/tasks"
	"slotify/services/waitlist"

	"github.com/hibiken/asynq"
)

// InitSlotFreedWorker runs the async worker consuming slot-freed events in
// the background. The queue is what makes event delivery at-least-once:
// a handler error requeues the event.
func InitSlotFreedWorker(waitlistSvc waitlist.WaitlistService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSlotFreed, handleSlotFreedTask(waitlistSvc))

	go func() {
		log.Println("[SlotFreedWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SlotFreedWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SlotFreedWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleSlotFreedTask(waitlistSvc waitlist.WaitlistService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SlotFreedPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[SlotFreedHandler] invalid payload: %v", err)
			return err
		}

		log.Printf("[SlotFreedHandler] slot freed for %s on %s", p.ServiceOfferingID, p.Date)
		return waitlistSvc.OnSlotFreed(ctx, p.ServiceOfferingID, p.Date)
	}
}

// NewEventQueueClient returns the asynq client used to enqueue events.
func NewEventQueueClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	})
}
