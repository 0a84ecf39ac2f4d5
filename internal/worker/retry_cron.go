package worker

// retry_cron.go
// Background goroutine that periodically drains the email dead letter
// queue back onto the live queue once the mailer circuit breaker has
// recovered, giving parked receipts another delivery attempt.

import (
	"context"
	"encoding/json"
	"time"

	"bizledger/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a background goroutine that ticks every 30s and,
// while the circuit breaker is closed, moves up to retryBatchSize parked
// email jobs from the DLQ back to the live queue.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// Only requeue when the breaker is fully closed — a half-open probe
	// should come from live traffic, not a DLQ flood.
	if cfg.CB.State() != infra.CBClosed {
		log.Debug().Msg("retry_cron: circuit breaker not closed, skipping tick")
		return
	}

	requeued := 0
	for i := 0; i < retryBatchSize; i++ {
		entry, err := PopDLQ(ctx, cfg.RDB, QueueEmail)
		if err != nil {
			break // empty DLQ or redis error; either way stop this tick
		}

		// Fresh attempt counter: the DLQ entry already records the history.
		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to marshal requeued job")
			continue
		}
		if err := cfg.RDB.LPush(ctx, QueueEmail, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
			return
		}
		requeued++
	}

	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("retry_cron: requeued parked email jobs")
	}
}
