package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Exhausted jobs are parked in a Redis list per source queue, keyed
// dlq:{queue}, where an operator can inspect and requeue them by hand.
const DLQPrefix = "dlq:"

// DLQEntry is the parked job plus enough context to diagnose it.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Attempts      int             `json:"attempts"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Payload       json.RawMessage `json:"payload"`
}

// SendToDLQ parks a job that ran out of attempts. Failures here are only
// logged; losing a parked copy must not take the worker down.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Attempts:      attempts,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: no se pudo serializar la entrada")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: no se pudo encolar")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Int("attempts", attempts).
		Str("reason", reason).
		Msg("dlq: trabajo descartado tras agotar reintentos")
}

// DLQLength reports how many jobs are parked for a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
