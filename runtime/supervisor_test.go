package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type panickyWorker struct {
	runs atomic.Int32
}

// Run panics on the first attempt, then finishes cleanly.
func (w *panickyWorker) Run(_ context.Context) error {
	if w.runs.Add(1) == 1 {
		panic("boom")
	}
	return nil
}

type blockingWorker struct {
	started atomic.Bool
}

func (w *blockingWorker) Run(ctx context.Context) error {
	w.started.Store(true)
	<-ctx.Done()
	return ctx.Err()
}

type failingWorker struct {
	runs atomic.Int32
}

func (w *failingWorker) Run(_ context.Context) error {
	w.runs.Add(1)
	return errors.New("transient failure")
}

func Test_Supervisor_Restarts_Panicked_Worker(t *testing.T) {
	req := require.New(t)
	worker := &panickyWorker{}
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond).Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not finish")
	}
	req.Equal(int32(2), worker.runs.Load())
}

func Test_Supervisor_Restarts_Failing_Worker_Until_Stopped(t *testing.T) {
	req := require.New(t)
	worker := &failingWorker{}
	sup := NewSupervisor(slog.Default(), time.Millisecond).Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	req.Eventually(func() bool { return worker.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not drain after Stop")
	}
}

func Test_Supervisor_Stop_Cancels_Blocking_Worker(t *testing.T) {
	req := require.New(t)
	worker := &blockingWorker{}
	sup := NewSupervisor(slog.Default(), time.Millisecond).Add(worker)

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	req.Eventually(func() bool { return worker.started.Load() }, 2*time.Second, 5*time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func Test_WorkerName(t *testing.T) {
	req := require.New(t)

	req.Equal("panickyWorker", WorkerName(&panickyWorker{}))
	req.Equal("NilWorker", WorkerName(nil))
}
