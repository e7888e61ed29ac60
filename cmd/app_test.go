package cmd

import (
	"context"
	"errors"
	"testing"
)

// runDirect calls fn in place, like ShowProgress off a terminal
func runDirect(_ context.Context, _ string, fn func() error) error {
	return fn()
}

func TestRunProgress(t *testing.T) {
	got, err := runProgress(context.Background(), runDirect, "Fetching", func() (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("runProgress() = %v, %v, want 42, nil", got, err)
	}

	wantErr := errors.New("rejected")
	got, err = runProgress(context.Background(), runDirect, "Fetching", func() (int, error) {
		return 7, wantErr
	})
	if !errors.Is(err, wantErr) || got != 0 {
		t.Errorf("runProgress() = %v, %v, want 0, %v", got, err, wantErr)
	}
}

func TestRunProgress_CancelledWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	finished := make(chan struct{})

	// returns on cancellation without waiting for fn, like the spinner
	run := func(ctx context.Context, _ string, fn func() error) error {
		go func() {
			_ = fn()
			close(finished)
		}()
		<-ctx.Done()
		return ctx.Err()
	}

	cancel()
	got, err := runProgress(ctx, run, "Waiting", func() (string, error) {
		<-release
		return "late", nil
	})
	close(release)
	<-finished

	if !errors.Is(err, context.Canceled) {
		t.Errorf("runProgress() error = %v, want context.Canceled", err)
	}
	if got != "" {
		t.Errorf("runProgress() = %q, want the zero value", got)
	}
}
