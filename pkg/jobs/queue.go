package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotRunning is returned by Enqueue before Start or after Stop.
var ErrNotRunning = errors.New("jobs: queue not running")

// Job is a unit of background work. Only the identifier travels through
// the queue; the handler loads the full record itself so a replayed job
// always sees current state.
type Job struct {
	ID       string
	Kind     string
	Attempt  int
	Enqueued time.Time
}

// Handler executes one job. A non-nil error schedules a retry.
type Handler func(context.Context, Job) error

// Config tunes the worker pool.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

func (c *Config) fill() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = c.Workers * 4
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Queue fans jobs out to a fixed pool of goroutines. Failures are
// re-enqueued after a delay until MaxRetries is exhausted.
type Queue struct {
	name    string
	handler Handler
	cfg     Config
	log     *zap.SugaredLogger

	pending chan Job

	startOnce sync.Once
	stopOnce  sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	running   sync.WaitGroup
}

func NewQueue(name string, handler Handler, cfg Config) *Queue {
	cfg.fill()
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		log:     cfg.Logger.Sugar().With("queue", name),
		pending: make(chan Job, cfg.BufferSize),
	}
}

// Start spawns the workers. Only the first call has any effect.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		q.ctx, q.cancel = context.WithCancel(ctx)
		q.running.Add(q.cfg.Workers)
		for i := 0; i < q.cfg.Workers; i++ {
			go q.drain()
		}
		q.log.Infow("queue started", "workers", q.cfg.Workers)
	})
}

// Stop cancels the workers and blocks until all of them return. Jobs
// still buffered are dropped; persisted ones are replayed on boot.
func (q *Queue) Stop() {
	if q.ctx == nil {
		return
	}
	q.stopOnce.Do(func() {
		q.cancel()
		q.running.Wait()
		q.log.Infow("queue stopped")
	})
}

// Enqueue submits a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	if q.ctx == nil {
		return ErrNotRunning
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case <-q.ctx.Done():
		return ErrNotRunning
	case q.pending <- job:
		return nil
	}
}

func (q *Queue) drain() {
	defer q.running.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.pending:
			if err := q.handler(q.ctx, job); err != nil {
				q.scheduleRetry(job, err)
			}
		}
	}
}

func (q *Queue) scheduleRetry(job Job, cause error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.log.Errorw("job gave up", "job_id", job.ID, "kind", job.Kind, "error", cause)
		return
	}
	q.log.Warnw("job retrying", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt, "error", cause)
	time.AfterFunc(q.cfg.RetryDelay, func() {
		if err := q.Enqueue(job); err != nil {
			q.log.Errorw("job requeue failed", "job_id", job.ID, "error", err)
		}
	})
}
