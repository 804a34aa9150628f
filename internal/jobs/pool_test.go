package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edusloth/edusloth-backend/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := NewPool(newTestLogger(t), 2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := pool.Submit(Job{
			Name: "count",
			Run: func(context.Context) {
				atomic.AddInt64(&count, 1)
				wg.Done()
			},
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if got := atomic.LoadInt64(&count); got != 5 {
		t.Fatalf("expected 5 jobs run, got %d", got)
	}
}

func TestPool_RejectsWhenQueueFull(t *testing.T) {
	pool := NewPool(newTestLogger(t), 1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := Job{Name: "blocker", Run: func(context.Context) {
		close(started)
		<-release
	}}
	if err := pool.Submit(blocker); err != nil {
		t.Fatalf("Submit blocker: %v", err)
	}
	<-started

	// Worker is busy; one slot of queue remains.
	if err := pool.Submit(Job{Name: "queued", Run: func(context.Context) {}}); err != nil {
		t.Fatalf("Submit queued: %v", err)
	}
	err := pool.Submit(Job{Name: "rejected", Run: func(context.Context) {}})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	close(release)
}

func TestPool_SurvivesPanickingJob(t *testing.T) {
	pool := NewPool(newTestLogger(t), 1, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	done := make(chan struct{})
	if err := pool.Submit(Job{Name: "boom", Run: func(context.Context) { panic("boom") }}); err != nil {
		t.Fatalf("Submit boom: %v", err)
	}
	if err := pool.Submit(Job{Name: "after", Run: func(context.Context) { close(done) }}); err != nil {
		t.Fatalf("Submit after: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not survive the panic")
	}
}

func TestPool_ShutdownDrainsAndRejects(t *testing.T) {
	pool := NewPool(newTestLogger(t), 2, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var count int64
	for i := 0; i < 4; i++ {
		if err := pool.Submit(Job{Name: "work", Run: func(context.Context) {
			atomic.AddInt64(&count, 1)
		}}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	pool.Shutdown()
	if got := atomic.LoadInt64(&count); got != 4 {
		t.Fatalf("expected 4 jobs drained before shutdown returned, got %d", got)
	}
	if err := pool.Submit(Job{Name: "late", Run: func(context.Context) {}}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed after shutdown, got %v", err)
	}
}
