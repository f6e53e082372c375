// Package worker detaches pipeline executions from the request path. Each
// submitted job runs in its own goroutine with a panic boundary; there is
// no pooled concurrency because the design runs exactly one pipeline
// instance per job, fire-and-forget.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner launches detached background executions and tracks them for
// graceful shutdown.
type Runner struct {
	log    *logrus.Logger
	wg     sync.WaitGroup
	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	onPanic func(name string, recovered interface{})
}

// NewRunner builds a runner. Background work derives from its own root
// context, not the submitting request's, so returning the HTTP response
// never cancels the pipeline.
func NewRunner(log *logrus.Logger) *Runner {
	base, cancel := context.WithCancel(context.Background())
	return &Runner{log: log, base: base, cancel: cancel}
}

// OnPanic registers a hook invoked when a submitted execution panics, after
// the panic has been logged. Used by the pipeline to mark the job failed.
func (r *Runner) OnPanic(fn func(name string, recovered interface{})) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPanic = fn
}

// Submit launches fn in a detached goroutine. The submitting caller never
// observes fn's failure; panics are caught at the goroutine boundary.
func (r *Runner) Submit(name string, fn func(ctx context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.WithFields(logrus.Fields{
					"task":  name,
					"panic": rec,
				}).Error("background task panicked")
				r.mu.Lock()
				hook := r.onPanic
				r.mu.Unlock()
				if hook != nil {
					hook(name, rec)
				}
			}
		}()
		r.log.WithField("task", name).Info("background task started")
		fn(r.base)
		r.log.WithField("task", name).Info("background task finished")
	}()
}

// Shutdown cancels the base context and waits up to timeout for in-flight
// executions to drain.
func (r *Runner) Shutdown(timeout time.Duration) bool {
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		r.log.Warn("shutdown timeout reached with background tasks still running")
		return false
	}
}
