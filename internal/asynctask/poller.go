// Package asynctask runs "submit then poll" external tasks with a bounded
// wait. Every call is independently budgeted by its caller; the poller never
// retries a submission and never backs off — it polls at a fixed interval
// until the task reaches a terminal status or the budget is spent.
package asynctask

import (
	"context"
	"fmt"
	"time"
)

// Status reported by an external task API.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether a task in this status will never change again.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Poll is one observation of an external task.
type Poll struct {
	Status Status
	Output string // task output (usually a URL), set when succeeded
	Reason string // provider-supplied error detail, set when failed
}

// Task describes one bounded submit-and-poll interaction.
type Task struct {
	// Submit starts the task and returns its provider-side id. Called once.
	Submit func(ctx context.Context) (string, error)
	// PollOnce fetches the current state of the task.
	PollOnce func(ctx context.Context, taskID string) (Poll, error)
	// MaxWait bounds the total time spent waiting after submission.
	MaxWait time.Duration
	// PollInterval is the fixed sleep between polls.
	PollInterval time.Duration
}

// FailedError reports a task that reached failed or canceled.
type FailedError struct {
	TaskID string
	Reason string
}

func (e *FailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("external task %s failed", e.TaskID)
	}
	return fmt.Sprintf("external task %s failed: %s", e.TaskID, e.Reason)
}

// TimeoutError reports a task still pending when the wait budget ran out.
// It is distinguishable from FailedError so operators can tell a slow
// provider from a broken one, but callers treat both as call failure.
type TimeoutError struct {
	TaskID  string
	Elapsed time.Duration
	Polls   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("external task %s timed out after %s (%d polls)", e.TaskID, e.Elapsed.Round(time.Second), e.Polls)
}

// Run submits the task and polls it to completion. On success it returns the
// task output. The wait between polls is cooperative: it sleeps on a timer
// and aborts promptly if ctx is canceled.
func Run(ctx context.Context, task Task) (string, error) {
	if task.PollInterval <= 0 {
		task.PollInterval = 3 * time.Second
	}

	taskID, err := task.Submit(ctx)
	if err != nil {
		return "", fmt.Errorf("submit task: %w", err)
	}

	start := time.Now()
	polls := 0
	for {
		if err := sleep(ctx, task.PollInterval); err != nil {
			return "", err
		}

		poll, err := task.PollOnce(ctx, taskID)
		if err != nil {
			return "", fmt.Errorf("poll task %s: %w", taskID, err)
		}
		polls++

		switch poll.Status {
		case StatusSucceeded:
			return poll.Output, nil
		case StatusFailed, StatusCanceled:
			reason := poll.Reason
			if reason == "" && poll.Status == StatusCanceled {
				reason = "task was canceled"
			}
			return "", &FailedError{TaskID: taskID, Reason: reason}
		}

		if elapsed := time.Since(start); elapsed >= task.MaxWait {
			return "", &TimeoutError{TaskID: taskID, Elapsed: elapsed, Polls: polls}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
