// Package queue runs Bazaar's background jobs.
//
// A job is a named, JSON-serialisable unit of work:
//
//	type WelcomeEmail struct{ UserID uint }
//	func (WelcomeEmail) Name() string  { return "welcome_email" }
//	func (j WelcomeEmail) Handle() error { ... }
//
// Producers depend only on the Dispatcher interface, so the order workflow
// can be tested against an in-memory recorder instead of a live queue:
//
//	mgr := queue.NewManager(queue.NewMemoryDriver())
//	mgr.Register("welcome_email", func() queue.Job { return &WelcomeEmail{} })
//	mgr.StartWorkers(ctx, 5)
//	mgr.Dispatch(WelcomeEmail{UserID: 1})
//
// Failing jobs are retried with linear backoff up to MaxRetry attempts,
// except when the error is marked Terminal. Retries are requeued through
// the driver's delayed queue, so a backing-off job never occupies a worker.
// Exhausted and terminal failures land in the dead letter (in memory, plus
// a database table when configured) for manual inspection.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/workerpool"
	"gorm.io/gorm"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Name identifies the job type on the wire. It must be stable across
	// releases and unique within the manager's registry.
	Name() string
	// Handle executes the job. Return a non-nil error to signal failure;
	// wrap it with Terminal to skip retries.
	Handle() error
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold a payload back for
// a while before making it poppable. The manager uses it for retry backoff;
// drivers without it get a timer-based fallback.
type DelayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

// Dispatcher is the producer-side capability. Services hold this interface,
// never a *Manager, so tests can substitute a recorder.
type Dispatcher interface {
	Dispatch(job Job) error
}

// FailedJob is a dead-lettered job held in memory.
type FailedJob struct {
	JobName  string
	Payload  []byte
	Err      error
	FailedAt time.Time
	Attempts int
}

// ── Terminal errors ───────────────────────────────────────────────────────────

type terminalError struct{ err error }

func (t terminalError) Error() string { return t.err.Error() }
func (t terminalError) Unwrap() error { return t.err }

// Terminal marks err as non-retryable: the job goes straight to the dead
// letter. Stock reduction uses this for insufficient stock, which no amount
// of retrying can fix.
func Terminal(err error) error {
	if err == nil {
		return nil
	}
	return terminalError{err: err}
}

// IsTerminal reports whether err (or anything it wraps) was marked Terminal.
func IsTerminal(err error) bool {
	var t terminalError
	return errors.As(err, &t)
}

// ── Manager ───────────────────────────────────────────────────────────────────

type envelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
	// Attempt counts executions, starting at 1. It travels with the
	// payload so a retry picked up by any worker knows where it stands.
	Attempt int `json:"attempt"`
}

// Manager owns a driver, a registry of job factories, and the worker pool
// that drains the queue.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	deadDB   *gorm.DB

	pool     *workerpool.Pool
	workWG   sync.WaitGroup
	stopOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxRetry sets how many attempts a failing job gets (default 3).
func WithMaxRetry(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxRetry = n
		}
	}
}

// WithDeadLetter persists exhausted jobs to the given database in addition
// to the in-memory dead letter. The table is auto-migrated.
func WithDeadLetter(db *gorm.DB) Option {
	return func(m *Manager) { m.deadDB = db }
}

// NewManager creates a Manager on the given driver.
func NewManager(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		registry: map[string]func() Job{},
		maxRetry: 3,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.deadDB != nil {
		m.deadDB.AutoMigrate(&FailedJobRecord{}) //nolint:errcheck
	}
	return m
}

// Register makes a job type available for deserialisation by name.
// Factories may close over dependencies (mailer, storage, repositories);
// only exported fields are populated from the JSON payload.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

// Dispatch pushes job onto the queue immediately. It never blocks on job
// execution; failures during execution are retried and dead-lettered by the
// workers, not surfaced here.
func (m *Manager) Dispatch(job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}
	return m.push(envelope{Name: job.Name(), Payload: payload, Attempt: 1}, 0)
}

// push serialises env and hands it to the driver, after delay when one is
// given. Drivers without a delayed queue fall back to a timer.
func (m *Manager) push(env envelope, delay time.Duration) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if delay <= 0 {
		return d.Push(raw)
	}
	if dd, ok := d.(DelayedDriver); ok {
		return dd.PushDelayed(raw, delay)
	}
	go func() {
		time.Sleep(delay)
		if err := d.Push(raw); err != nil {
			logger.Error("queue: delayed push failed", "name", env.Name, "error", err)
		}
	}()
	return nil
}

// StartWorkers launches a fetch loop feeding n pooled workers. The loop and
// the pool drain and stop when ctx is cancelled.
func (m *Manager) StartWorkers(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	m.pool = workerpool.New(n)

	m.workWG.Add(1)
	go func() {
		defer m.workWG.Done()
		m.fetchLoop(ctx)
	}()

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	logger.Info("queue: workers started", "count", n)
}

// Stop shuts down the fetch loop's pool after in-flight jobs finish, then
// closes the driver when it supports closing. Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.pool != nil {
			m.pool.Shutdown()
		}
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()
		if c, ok := d.(interface{ Close() error }); ok {
			c.Close() //nolint:errcheck
		}
	})
}

func (m *Manager) fetchLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

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

		if err := m.pool.SubmitWait(func() { m.process(raw) }); err != nil {
			return // pool closed — shutting down
		}
	}
}

func (m *Manager) process(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Name]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job", "name", env.Name)
		m.persistFailed(env.Name, env.Payload, errors.New("unregistered job"), 0)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "name", env.Name, "error", err)
		m.persistFailed(env.Name, env.Payload, err, 0)
		return
	}

	if env.Attempt < 1 {
		env.Attempt = 1
	}
	m.run(job, env)
}

// run executes one attempt. A retryable failure goes back onto the queue
// with linear backoff instead of sleeping in the worker, so a backing-off
// job never starves the pool.
func (m *Manager) run(job Job, env envelope) {
	err := job.Handle()
	if err == nil {
		observe(job.Name(), "ok")
		logger.Info("queue: job processed", "name", job.Name(), "attempt", env.Attempt)
		return
	}

	if IsTerminal(err) {
		logger.Error("queue: job failed terminally", "name", job.Name(), "error", err)
		observe(job.Name(), "terminal")
		m.persistFailed(job.Name(), env.Payload, err, env.Attempt)
		return
	}

	if env.Attempt >= m.maxRetry {
		observe(job.Name(), "exhausted")
		m.persistFailed(job.Name(), env.Payload, err, env.Attempt)
		logger.Error("queue: job exhausted retries", "name", job.Name(), "error", err)
		return
	}

	logger.Warn("queue: job failed, retrying",
		"name", job.Name(), "attempt", env.Attempt, "error", err)
	observe(job.Name(), "retry")

	delay := time.Duration(env.Attempt) * time.Second // linear backoff
	env.Attempt++
	if rerr := m.push(env, delay); rerr != nil {
		logger.Error("queue: requeue failed", "name", job.Name(), "error", rerr)
		m.persistFailed(job.Name(), env.Payload, err, env.Attempt-1)
	}
}

// FailedJobs returns a snapshot of the in-memory dead letter.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedJob, len(m.failed))
	copy(out, m.failed)
	return out
}
