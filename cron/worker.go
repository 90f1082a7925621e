package cron

import (
	"context"
	"log"
	"time"

	"tajriba/config"
	"tajriba/services/booking"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const (
	TypeExpirePending = "booking:expire_pending"
	TypeAutoComplete  = "booking:auto_complete"
)

// InitBookingWorker runs the async worker and its periodic scheduler in
// the background. The worker sweeps stale pending bookings (host never
// answered) and auto-completes confirmed bookings whose window ended.
func InitBookingWorker(bookingSvc booking.BookingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpirePending, handleExpirePending(bookingSvc))
	mux.HandleFunc(TypeAutoComplete, handleAutoComplete(bookingSvc))

	go monitorRedisConnection()
	go runScheduler(redisOpts)

	go func() {
		log.Println("[BookingWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// runScheduler enqueues the sweep tasks on a fixed cadence.
func runScheduler(redisOpts asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	if _, err := scheduler.Register("@every 10m", asynq.NewTask(TypeExpirePending, nil)); err != nil {
		log.Printf("[BookingWorker] ❌ Failed to register expiry sweep: %v", err)
	}
	if _, err := scheduler.Register("@every 15m", asynq.NewTask(TypeAutoComplete, nil)); err != nil {
		log.Printf("[BookingWorker] ❌ Failed to register completion sweep: %v", err)
	}

	if err := scheduler.Run(); err != nil {
		log.Printf("[BookingWorker] ❌ Scheduler stopped: %v", err)
	}
}

func handleExpirePending(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := bookingSvc.ExpirePendingBookings(ctx)
		if err != nil {
			log.Printf("[BookingWorker] ❌ Pending expiry sweep failed: %v", err)
			return err
		}
		if n > 0 {
			log.Printf("[BookingWorker] ⏰ Expired %d stale pending bookings", n)
		}
		return nil
	}
}

func handleAutoComplete(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := bookingSvc.CompleteElapsedBookings(ctx)
		if err != nil {
			log.Printf("[BookingWorker] ❌ Auto-complete sweep failed: %v", err)
			return err
		}
		if n > 0 {
			log.Printf("[BookingWorker] ✅ Auto-completed %d elapsed bookings", n)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[BookingWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
