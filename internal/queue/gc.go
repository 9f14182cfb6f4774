package queue

import (
	"context"
	"fmt"
	"log"
	"time"
)

// GarbageCollector sweeps the dead-letter queue on an interval. Diary jobs
// land there after a persistence failure and are never retried, so without
// a sweep the DLQ grows for as long as the broker runs.
type GarbageCollector struct {
	dlqPurger DLQPurger
	interval  time.Duration
	retention time.Duration
}

// NewGarbageCollector creates a collector that drops dead-lettered jobs
// older than retention every interval.
func NewGarbageCollector(purger DLQPurger, interval time.Duration, retention time.Duration) *GarbageCollector {
	return &GarbageCollector{
		dlqPurger: purger,
		interval:  interval,
		retention: retention,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := gc.sweep(ctx); err != nil {
				log.Printf("DLQ sweep error: %v", err)
			}
		}
	}
}

func (gc *GarbageCollector) sweep(ctx context.Context) error {
	if gc.dlqPurger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	n, err := gc.dlqPurger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("DLQ purge: %w", err)
	}
	if n > 0 {
		log.Printf("Dropped %d dead diary job(s) older than %v", n, gc.retention)
	}
	return nil
}
