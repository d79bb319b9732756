package usage

import (
	"context"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 100 * time.Millisecond

// Progress returns the number of files and bytes counted so far.
func (a *Aggregator) Progress() (files, bytes int64) {
	return a.files.Load(), a.bytes.Load()
}

// Watch invokes hook(files, bytes) on each tick until ctx is done.
// It only reads counters; scans themselves stay on the caller's goroutine.
// The returned channel is closed once hook will no longer be called.
func (a *Aggregator) Watch(ctx context.Context, hook func(files, bytes int64), interval time.Duration) <-chan struct{} {
	done := make(chan struct{})

	if hook == nil {
		close(done)

		return done
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(a.Progress())
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}
