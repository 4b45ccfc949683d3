package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeExpirer struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
	n     int64
}

func (f *fakeExpirer) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.n, f.err
}

func (f *fakeExpirer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRunOncePassesClock(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	exp := &fakeExpirer{n: 3}

	job := New(exp, time.Minute, nil)
	job.now = func() time.Time { return now }

	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if exp.count() != 1 || !exp.calls[0].Equal(now) {
		t.Fatalf("expected one call at %v, got %v", now, exp.calls)
	}
}

func TestRunOnceWrapsError(t *testing.T) {
	boom := errors.New("db down")
	job := New(&fakeExpirer{err: boom}, time.Minute, nil)

	err := job.RunOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestStartTicksUntilCancelled(t *testing.T) {
	exp := &fakeExpirer{}
	job := New(exp, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for exp.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job did not stop after cancel")
	}
	if exp.count() < 2 {
		t.Fatalf("expected at least two runs, got %d", exp.count())
	}
}
