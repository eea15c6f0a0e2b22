package cache

import (
	"context"
	"time"

	"dompetku/internal/log"
)

// Cleaner is anything that knows how to drop its expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor runs a periodic sweep over registered caches so that expired
// dashboard snapshots do not linger past their TTL.
type Janitor struct {
	caches   map[string]Cleaner
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *log.Logger
}

func NewJanitor(interval time.Duration, logger *log.Logger) *Janitor {
	return &Janitor{
		caches:   make(map[string]Cleaner),
		interval: interval,
		logger:   logger,
	}
}

// Register adds a named cache to the sweep set. Not safe to call after Start.
func (j *Janitor) Register(name string, c Cleaner) {
	j.caches[name] = c
}

// Start launches the background sweep loop.
func (j *Janitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})
	go j.run(ctx)
}

func (j *Janitor) run(ctx context.Context) {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for name, c := range j.caches {
				if removed := c.CleanExpired(); removed > 0 {
					j.logger.Debug("cache sweep", "cache", name, "removed", removed)
				}
			}
		}
	}
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
}
