package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

type echoJob struct {
	Val string `json:"val"`

	called *atomic.Int32
}

func (echoJob) Name() string { return "echo" }

func (j *echoJob) Handle() error {
	j.called.Add(1)
	return nil
}

type failJob struct {
	attempts *atomic.Int32
}

func (failJob) Name() string { return "fail" }

func (j *failJob) Handle() error {
	j.attempts.Add(1)
	return errors.New("always fails")
}

type terminalJob struct {
	attempts *atomic.Int32
}

func (terminalJob) Name() string { return "terminal" }

func (j *terminalJob) Handle() error {
	j.attempts.Add(1)
	return queue.Terminal(errors.New("cannot succeed"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestDispatchAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := &atomic.Int32{}
	mgr := queue.NewManager(queue.NewMemoryDriver())
	mgr.Register("echo", func() queue.Job { return &echoJob{called: called} })
	mgr.StartWorkers(ctx, 2)

	if err := mgr.Dispatch(&echoJob{Val: "hello", called: called}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return called.Load() == 1 })
}

func TestRetryThenDeadLetter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := &atomic.Int32{}
	mgr := queue.NewManager(queue.NewMemoryDriver(), queue.WithMaxRetry(2))
	mgr.Register("fail", func() queue.Job { return &failJob{attempts: attempts} })
	mgr.StartWorkers(ctx, 1)

	if err := mgr.Dispatch(&failJob{attempts: attempts}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return len(mgr.FailedJobs()) == 1 })

	if got := attempts.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
	failed := mgr.FailedJobs()[0]
	if failed.JobName != "fail" {
		t.Errorf("expected dead letter for %q, got %q", "fail", failed.JobName)
	}
	if failed.Attempts != 2 {
		t.Errorf("expected 2 recorded attempts, got %d", failed.Attempts)
	}
}

// A retrying job must go back onto the queue for its backoff instead of
// sleeping inside the only worker; other jobs keep flowing meanwhile.
func TestRetryBackoffDoesNotBlockWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := &atomic.Int32{}
	called := &atomic.Int32{}
	mgr := queue.NewManager(queue.NewMemoryDriver(), queue.WithMaxRetry(3))
	mgr.Register("fail", func() queue.Job { return &failJob{attempts: attempts} })
	mgr.Register("echo", func() queue.Job { return &echoJob{called: called} })
	mgr.StartWorkers(ctx, 1)

	if err := mgr.Dispatch(&failJob{attempts: attempts}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	start := time.Now()
	if err := mgr.Dispatch(&echoJob{called: called}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return called.Load() == 1 })
	// First backoff is a full second; the echo job must not wait it out.
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("echo job waited %v behind a backing-off job", elapsed)
	}

	// The failing job still exhausts its retries and dead-letters.
	waitFor(t, func() bool { return len(mgr.FailedJobs()) == 1 })
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

type closableDriver struct {
	*queue.MemoryDriver
	closed atomic.Bool
}

func (d *closableDriver) Close() error {
	d.closed.Store(true)
	return nil
}

func TestStopClosesDriver(t *testing.T) {
	d := &closableDriver{MemoryDriver: queue.NewMemoryDriver()}
	mgr := queue.NewManager(d)

	mgr.Stop()
	if !d.closed.Load() {
		t.Error("Stop must close a closable driver")
	}
	mgr.Stop() // second Stop must not panic
}

func TestTerminalSkipsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := &atomic.Int32{}
	mgr := queue.NewManager(queue.NewMemoryDriver(), queue.WithMaxRetry(5))
	mgr.Register("terminal", func() queue.Job { return &terminalJob{attempts: attempts} })
	mgr.StartWorkers(ctx, 1)

	if err := mgr.Dispatch(&terminalJob{attempts: attempts}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return len(mgr.FailedJobs()) == 1 })

	if got := attempts.Load(); got != 1 {
		t.Errorf("terminal job should run exactly once, ran %d times", got)
	}
}

func TestUnregisteredJobDeadLetters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := queue.NewManager(queue.NewMemoryDriver())
	mgr.StartWorkers(ctx, 1)

	called := &atomic.Int32{}
	if err := mgr.Dispatch(&echoJob{Val: "nobody home", called: called}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	waitFor(t, func() bool { return len(mgr.FailedJobs()) == 1 })
	if called.Load() != 0 {
		t.Error("unregistered job must not run")
	}
}

func TestTerminalWrapping(t *testing.T) {
	base := errors.New("root cause")
	wrapped := queue.Terminal(fmt.Errorf("context: %w", base))

	if !queue.IsTerminal(wrapped) {
		t.Error("expected IsTerminal on wrapped error")
	}
	if !errors.Is(wrapped, base) {
		t.Error("Terminal must preserve the error chain")
	}
	if queue.IsTerminal(base) {
		t.Error("plain error must not be terminal")
	}
	if queue.Terminal(nil) != nil {
		t.Error("Terminal(nil) must be nil")
	}
}

func TestStopDrainsInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	called := &atomic.Int32{}
	mgr := queue.NewManager(queue.NewMemoryDriver())
	mgr.Register("echo", func() queue.Job { return &echoJob{called: called} })
	mgr.StartWorkers(ctx, 2)

	for i := 0; i < 10; i++ {
		if err := mgr.Dispatch(&echoJob{called: called}); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
	}

	waitFor(t, func() bool { return called.Load() == 10 })
	cancel()
	mgr.Stop() // second Stop must be a no-op
}
