package main

import (
	"context"
	"log/slog"
	"time"
)

type sweepJob struct {
	name string
	run  func(ctx context.Context) error
}

// runSweeps runs every job once at start and then on each tick until ctx is done.
// A failing job is logged and retried on the next tick.
func runSweeps(ctx context.Context, interval time.Duration, jobs ...sweepJob) {
	tick := func() {
		for _, j := range jobs {
			jctx, cancel := context.WithTimeout(ctx, time.Minute)
			if err := j.run(jctx); err != nil {
				slog.ErrorContext(ctx, "sweep failed", "job", j.name, "err", err)
			}
			cancel()
		}
	}

	tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
