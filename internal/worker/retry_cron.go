package worker

// retry_cron.go
// Failed jobs wait in a Redis sorted set scored by their due time. A ticker
// moves due jobs back onto their source queue.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetrySet          = "jobs:retry"
	retryTickInterval = 5 * time.Second
	retryBatchSize    = 50
	retryBaseDelay    = 10 * time.Second
)

// retryBackoff doubles per attempt: 10s, 20s, 40s …
func retryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return retryBaseDelay * time.Duration(1<<uint(attempts-1))
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, job Job, at time.Time) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.ZAdd(ctx, RetrySet, redis.Z{Score: float64(at.Unix()), Member: encoded}).Err()
}

// StartRetryScheduler launches the goroutine that requeues due retries.
// It respects the context for graceful shutdown.
func StartRetryScheduler(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_scheduler: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_scheduler: shutting down")
				return
			case now := <-ticker.C:
				if _, err := promoteDueRetries(ctx, rdb, now); err != nil {
					log.Error().Err(err).Msg("retry_scheduler: failed to promote retries")
				}
			}
		}
	}()
}

// promoteDueRetries moves every job due at or before now back to its queue.
// ZREM decides ownership, so concurrent schedulers never requeue a job twice.
func promoteDueRetries(ctx context.Context, rdb *redis.Client, now time.Time) (int, error) {
	members, err := rdb.ZRangeByScore(ctx, RetrySet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, m := range members {
		removed, err := rdb.ZRem(ctx, RetrySet, m).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(m), &job); err != nil || job.Queue == "" {
			log.Error().Str("member", m).Msg("retry_scheduler: dropping undecodable job")
			continue
		}
		if err := rdb.LPush(ctx, job.Queue, m).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Int("count", moved).Msg("retry_scheduler: jobs requeued")
	}
	return moved, nil
}
