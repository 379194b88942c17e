package worker

// Jobs that run out of attempts, or fail permanently, are parked in one Redis
// list per source queue (dlq:{queue}) for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry is the dead job plus why and when it died.
type DLQEntry struct {
	Job
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ parks job. Errors are logged; the job is lost only if Redis is.
func SendToDLQ(ctx context.Context, rdb *redis.Client, job Job, reason string, at time.Time) {
	data, err := json.Marshal(DLQEntry{Job: job, Reason: reason, FailedAt: at.UTC()})
	if err != nil {
		log.Error().Err(err).Str("queue", job.Queue).Msg("dlq: encode entry")
		return
	}
	key := DLQPrefix + job.Queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Str("job_id", job.ID).Msg("dlq: push")
		return
	}
	log.Warn().
		Str("job_id", job.ID).
		Str("queue", job.Queue).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job dead-lettered")
}

// DLQLength reports how many jobs are parked for queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
