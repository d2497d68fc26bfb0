package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type Runner struct {
	Logger *zap.Logger

	// GracePeriod bounds how long WithSignals waits for start to return
	// after a shutdown signal.
	GracePeriod time.Duration
}

func New(log *zap.Logger) *Runner {
	return &Runner{Logger: log, GracePeriod: 15 * time.Second}
}

// WithSignals runs start under a context cancelled by SIGINT/SIGTERM and
// returns a process exit code. After a signal it waits up to GracePeriod
// for start to return so in-flight shutdown hooks can finish.
func (r *Runner) WithSignals(start func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case <-ctx.Done():
		r.Logger.Info("shutdown signal received")
		select {
		case err := <-errCh:
			return r.exitCode(err)
		case <-time.After(r.GracePeriod):
			r.Logger.Warn("shutdown grace period elapsed")
			return 0
		}
	case err := <-errCh:
		return r.exitCode(err)
	}
}

func (r *Runner) exitCode(err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return 0
	}
	r.Logger.Error("service exited with error", zap.Error(err))
	return 1
}

// Graceful invokes shutdown with a fresh deadline, detached from the
// already-cancelled run context.
func (r *Runner) Graceful(timeout time.Duration, shutdown func(context.Context) error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(c); err != nil {
		r.Logger.Warn("graceful shutdown", zap.Error(err))
	}
}

func Exit(code int) {
	os.Exit(code)
}
