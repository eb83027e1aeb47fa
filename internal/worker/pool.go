package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
)

const (
	QueueSimulation = "jobs:simulation"
	QueueNotify     = "jobs:notify"

	// maxJobAttempts before a failing job is parked in the DLQ.
	maxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error requeues the job until
// maxJobAttempts, then it goes to the DLQ.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb     *redis.Client
	metrics *infra.Metrics
}

func NewDispatcher(rdb *redis.Client, metrics *infra.Metrics) *Dispatcher {
	return &Dispatcher{rdb: rdb, metrics: metrics}
}

// EnqueueSimulation pushes a background simulation run to Redis.
func (d *Dispatcher) EnqueueSimulation(ctx context.Context, payload SimulationJobPayload) error {
	return d.enqueue(ctx, QueueSimulation, "simulation", payload)
}

// EnqueueNotify pushes a notification job to Redis.
func (d *Dispatcher) EnqueueNotify(ctx context.Context, payload NotifyJobPayload) error {
	return d.enqueue(ctx, QueueNotify, "notify", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return err
	}
	d.metrics.RecordQueueJob(queue, "enqueued")
	return nil
}

// Pool consumes both queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	metrics  *infra.Metrics
	handlers map[string]Handler
}

func NewPool(rdb *redis.Client, metrics *infra.Metrics, simWorker, notifyWorker Handler) *Pool {
	return &Pool{
		rdb:     rdb,
		metrics: metrics,
		handlers: map[string]Handler{
			QueueSimulation: simWorker,
			QueueNotify:     notifyWorker,
		},
	}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so an idle pool
// costs no CPU. Shutdown is via ctx.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueSimulation, QueueNotify}
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx.
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		p.metrics.RecordQueueJob(queue, "malformed")
		return
	}

	handler, ok := p.handlers[queue]
	if !ok || handler == nil {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	if err := handler.Process(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxJobAttempts {
			SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			p.metrics.RecordQueueJob(queue, "dead_lettered")
			return
		}
		log.Warn().
			Str("queue", queue).
			Str("type", job.Type).
			Int("attempts", job.Attempts).
			Err(err).
			Msg("job failed, requeueing")
		if encoded, mErr := json.Marshal(job); mErr == nil {
			_ = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		p.metrics.RecordQueueJob(queue, "retried")
		return
	}
	p.metrics.RecordQueueJob(queue, "processed")
}
