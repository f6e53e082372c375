package asynctask

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_Succeeds(t *testing.T) {
	calls := 0
	out, err := Run(context.Background(), Task{
		Submit: func(ctx context.Context) (string, error) { return "t-1", nil },
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			if id != "t-1" {
				t.Fatalf("unexpected task id %q", id)
			}
			calls++
			if calls < 3 {
				return Poll{Status: StatusRunning}, nil
			}
			return Poll{Status: StatusSucceeded, Output: "https://cdn/out.mp4"}, nil
		},
		MaxWait:      time.Second,
		PollInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "https://cdn/out.mp4" {
		t.Fatalf("unexpected output %q", out)
	}
	if calls != 3 {
		t.Fatalf("expected 3 polls, got %d", calls)
	}
}

func TestRun_TaskFailed(t *testing.T) {
	_, err := Run(context.Background(), Task{
		Submit: func(ctx context.Context) (string, error) { return "t-2", nil },
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			return Poll{Status: StatusFailed, Reason: "codec not supported"}, nil
		},
		MaxWait:      time.Second,
		PollInterval: time.Millisecond,
	})
	var fe *FailedError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FailedError, got %v", err)
	}
	if fe.Reason != "codec not supported" {
		t.Fatalf("unexpected reason %q", fe.Reason)
	}
}

func TestRun_Canceled(t *testing.T) {
	_, err := Run(context.Background(), Task{
		Submit: func(ctx context.Context) (string, error) { return "t-3", nil },
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			return Poll{Status: StatusCanceled}, nil
		},
		MaxWait:      time.Second,
		PollInterval: time.Millisecond,
	})
	var fe *FailedError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FailedError, got %v", err)
	}
	if fe.Reason == "" {
		t.Fatal("canceled tasks should carry a reason")
	}
}

func TestRun_TimesOutWhileStillRunning(t *testing.T) {
	_, err := Run(context.Background(), Task{
		Submit: func(ctx context.Context) (string, error) { return "t-4", nil },
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			return Poll{Status: StatusRunning}, nil
		},
		MaxWait:      20 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if te.Polls == 0 {
		t.Fatal("expected at least one poll before timeout")
	}
	if te.Elapsed < 20*time.Millisecond {
		t.Fatalf("elapsed %s is below the budget", te.Elapsed)
	}
}

func TestRun_SubmitErrorIsNotRetried(t *testing.T) {
	submits := 0
	_, err := Run(context.Background(), Task{
		Submit: func(ctx context.Context) (string, error) {
			submits++
			return "", errors.New("boom")
		},
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			t.Fatal("must not poll after failed submit")
			return Poll{}, nil
		},
		MaxWait:      time.Second,
		PollInterval: time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if submits != 1 {
		t.Fatalf("submit called %d times, want 1", submits)
	}
}

func TestRun_ContextCancelAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Task{
		Submit: func(ctx context.Context) (string, error) { return "t-5", nil },
		PollOnce: func(ctx context.Context, id string) (Poll, error) {
			return Poll{Status: StatusRunning}, nil
		},
		MaxWait:      time.Minute,
		PollInterval: time.Hour,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
