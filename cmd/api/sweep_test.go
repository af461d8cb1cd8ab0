package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunSweeps_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ok, failing atomic.Int32

	done := make(chan struct{})
	go func() {
		runSweeps(ctx, 5*time.Millisecond,
			sweepJob{name: "ok", run: func(context.Context) error {
				ok.Add(1)
				return nil
			}},
			sweepJob{name: "failing", run: func(context.Context) error {
				failing.Add(1)
				return errors.New("db down")
			}},
		)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for ok.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("sweeps ran %d times", ok.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	if failing.Load() < 3 {
		t.Fatalf("a failing job must not stop later ticks: %d", failing.Load())
	}
}
