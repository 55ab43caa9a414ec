// Package forward delivers published snapshots to third-party telemetry
// services. Every forwarder is fire-and-forget: delivery failures are
// logged and the next interval tries again with the then-current snapshot.
package forward

import (
	"context"
	"time"

	"github.com/envsense/enviroctl/internal/collector"
)

// SnapshotSource provides the latest published snapshot. A nil snapshot
// means no cycle has completed yet and the forwarder skips the interval.
type SnapshotSource interface {
	Latest() collector.Snapshot
}

// Forwarder is a periodic delivery loop. Run blocks until the context is
// cancelled.
type Forwarder interface {
	Name() string
	Run(ctx context.Context)
}

// loop drives a forwarder body at a fixed interval. The first delivery
// happens one full interval after startup so the collector has a
// snapshot to send.
func loop(ctx context.Context, interval time.Duration, post func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			post(ctx)
		}
	}
}
