package worker

import (
	"context"
	"encoding/json"
	"time"

	"fisiogest/internal/audit"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"
	QueueRecibos   = "jobs:recibos"
)

// Job is the generic envelope for all async tasks. Attempts counts prior
// failed runs; it drives the retry/DLQ decision.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. It is also the production audit.Sink: Record enqueues the
// event and swallows any enqueue failure.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Record implements audit.Sink. Fire-and-forget: an unreachable queue is
// logged and the caller's write proceeds untouched.
func (d *Dispatcher) Record(ctx context.Context, ev audit.Event) {
	if err := d.enqueue(ctx, QueueAuditoria, "auditoria", ev); err != nil {
		log.Warn().Err(err).Str("accion", ev.Accion).Msg("auditoria: encolado falló")
	}
}

// EnqueueRecibo pushes a receipt-PDF job to Redis.
func (d *Dispatcher) EnqueueRecibo(ctx context.Context, payload ReciboJobPayload) error {
	return d.enqueue(ctx, QueueRecibos, "recibo", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers bundles the concrete processors wired at the composition
// root.
type WorkerHandlers struct {
	Auditoria *AuditoriaWorker
	Recibo    *ReciboWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueAuditoria, QueueRecibos}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch queue {
	case QueueAuditoria:
		if handlers.Auditoria != nil {
			handlers.Auditoria.Process(ctx, rdb, job)
		}
	case QueueRecibos:
		if handlers.Recibo != nil {
			handlers.Recibo.Process(ctx, rdb, job)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job sin handler")
	}
}
