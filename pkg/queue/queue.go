// Package queue processes background jobs with at-least-once delivery.
//
// The document-change triggers ride on it: the change-stream watcher
// dispatches a job per event, workers execute it, and failures are retried
// with backoff before landing in the failed-job buffer. Jobs must therefore
// be idempotent.
//
//	m := queue.NewManager(queue.NewMemoryDriver())
//	m.Register("order.confirmation", func() queue.Job { return jobs.NewOrderConfirmation(store) })
//	m.Dispatch("order.confirmation", &jobs.OrderConfirmation{OrderID: id})
//	m.Start(ctx, 5)
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/marketlane/storefront/pkg/logger"
	"github.com/marketlane/storefront/pkg/metrics"
)

// Job is the interface every queued job must satisfy. Handle is invoked at
// least once per dispatch and must tolerate replays.
type Job interface {
	Handle(ctx context.Context) error
}

// FailedJob records a job that exhausted its retries.
type FailedJob struct {
	Type     string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold a payload back
// until a delay elapses. Retries ride on it so workers never sleep.
type DelayedDriver interface {
	Driver
	PushDelayed(payload []byte, delay time.Duration) error
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Attempt int             `json:"attempt"`
}

// Manager owns a driver, a registry of job factories, and the worker pool.
// Construct one at boot and pass it where jobs are dispatched; there is no
// package-level singleton.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
}

// NewManager creates a Manager over the given driver.
func NewManager(d Driver) *Manager {
	return &Manager{
		driver:   d,
		registry: map[string]func() Job{},
		maxRetry: 3,
	}
}

// SetMaxRetry sets how many times a failing job is attempted.
func (m *Manager) SetMaxRetry(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.maxRetry = n
	}
}

// Register makes a job type available for deserialization by name. Call
// once at boot for every job type; the factory closes over the job's
// dependencies.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Dispatch pushes a job onto the queue under the registered name.
func (m *Manager) Dispatch(name string, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}

	env, err := json.Marshal(envelope{Type: name, Payload: payload, Attempt: 1})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	return d.Push(env)
}

// Start launches n workers that process jobs until ctx is cancelled.
func (m *Manager) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go m.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			m.mu.RLock()
			d := m.driver
			m.mu.RUnlock()

			raw, err := d.Pop(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if raw == nil {
				continue
			}

			m.process(ctx, raw)
		}
	}
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}
	if env.Attempt < 1 {
		env.Attempt = 1
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	maxRetry := m.maxRetry
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	start := time.Now()
	err := job.Handle(ctx)
	metrics.QueueJobDuration.WithLabelValues(env.Type).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.QueueJobsProcessed.WithLabelValues("success").Inc()
		logger.Info("queue: job processed", "type", env.Type)
		return
	}

	if env.Attempt >= maxRetry {
		metrics.QueueJobsProcessed.WithLabelValues("failed").Inc()
		m.mu.Lock()
		m.failed = append(m.failed, FailedJob{
			Type:     env.Type,
			Payload:  env.Payload,
			Err:      err,
			FailedAt: time.Now(),
			Attempts: env.Attempt,
		})
		m.mu.Unlock()
		logger.Error("queue: job exhausted retries", "type", env.Type, "error", err)
		return
	}

	logger.Warn("queue: job failed, retrying",
		"type", env.Type, "attempt", env.Attempt, "error", err)
	m.requeue(env)
}

// requeue re-dispatches a failed envelope with linear backoff. The wait
// lives in the driver's delayed queue, not in a sleeping worker, so it
// neither blocks the worker nor outlives a cancelled context by more than
// one in-flight job.
func (m *Manager) requeue(env envelope) {
	delay := time.Duration(env.Attempt) * time.Second
	env.Attempt++

	raw, err := json.Marshal(env)
	if err != nil {
		logger.Error("queue: marshal retry envelope", "type", env.Type, "error", err)
		return
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if dd, ok := d.(DelayedDriver); ok {
		if err := dd.PushDelayed(raw, delay); err != nil {
			logger.Error("queue: delayed requeue", "type", env.Type, "error", err)
		}
		return
	}

	time.AfterFunc(delay, func() {
		if err := d.Push(raw); err != nil {
			logger.Error("queue: requeue", "type", env.Type, "error", err)
		}
	})
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}
