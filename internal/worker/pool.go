package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail   = "jobs:email"
	QueueReceipt = "jobs:receipt"

	// MaxAttempts is how many times a job runs before it is dead-lettered.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error schedules a retry
// unless it is wrapped with Permanent.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the job goes straight to the DLQ.
func Permanent(err error) error { return permanentError{err: err} }

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

// EnqueueReceipt pushes a receipt rendering job to Redis.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, QueueReceipt, "receipt", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{ID: uuid.NewString(), Queue: queue, Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue that
// has a handler. Each goroutine blocks on BRPOP, so idle workers cost nothing.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, numWorkers int) {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, queues, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queues []string, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1], time.Now())
		}
	}
}

// processJob runs one raw job and routes failures to the retry set or the DLQ.
func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string, now time.Time) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, Job{Queue: queue, Payload: json.RawMessage(`null`)}, "undecodable envelope: "+err.Error(), now)
		return
	}
	if job.Queue == "" {
		job.Queue = queue
	}

	h, ok := handlers[job.Queue]
	if !ok {
		SendToDLQ(ctx, rdb, job, "no handler for queue", now)
		return
	}

	logger := log.With().Str("job_id", job.ID).Str("type", job.Type).Str("queue", job.Queue).Logger()
	err := h.Process(ctx, job.Payload)
	if err == nil {
		logger.Info().Int("attempt", job.Attempts+1).Msg("job done")
		return
	}

	job.Attempts++
	if isPermanent(err) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, rdb, job, err.Error(), now)
		return
	}
	at := now.Add(retryBackoff(job.Attempts))
	if serr := scheduleRetry(ctx, rdb, job, at); serr != nil {
		logger.Error().Err(serr).Msg("failed to schedule retry")
		SendToDLQ(ctx, rdb, job, err.Error(), now)
		return
	}
	logger.Warn().Err(err).Int("attempts", job.Attempts).Time("retry_at", at).Msg("job failed, retry scheduled")
}
