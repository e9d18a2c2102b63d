package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	panicking := workerFunc(func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	})

	sup := NewSupervisor(slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go sup.Add(panicking).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(900 * time.Millisecond)

	req.GreaterOrEqual(calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	oneShot := workerFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	sup := NewSupervisor(slog.Default())
	done := make(chan struct{})

	go func() {
		sup.Add(oneShot).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		req.Equal(int32(1), calls.Load())
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)

	blocking := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	sup := NewSupervisor(slog.Default())
	done := make(chan struct{})
	go func() {
		sup.Add(blocking).Run(context.Background())
		close(done)
	}()

	// Give Run time to install the cancel func and start the worker
	time.Sleep(50 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have drained after Stop")
	}
}
