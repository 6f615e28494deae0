package service

import (
	"context"
	"sync"
	"time"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/logger"
)

// SnapshotRefresher rebuilds the dashboard snapshot on a fixed interval
type SnapshotRefresher struct {
	dashboard   domain.DashboardService
	logger      logger.Logger
	interval    time.Duration
	stopChan    chan struct{}
	stoppedChan chan struct{}
	mu          sync.Mutex
	running     bool
	lastRefresh time.Time
}

// NewSnapshotRefresher creates a new snapshot refresher
func NewSnapshotRefresher(dashboard domain.DashboardService, logger logger.Logger, interval time.Duration) *SnapshotRefresher {
	return &SnapshotRefresher{
		dashboard:   dashboard,
		logger:      logger,
		interval:    interval,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start runs the refresh loop. Blocks until Stop is called or ctx is cancelled.
// The first refresh happens one interval after start since the snapshot is
// built at startup.
func (r *SnapshotRefresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running || r.interval <= 0 {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		close(r.stoppedChan)
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop signals the refresher to stop and waits for it to finish
func (r *SnapshotRefresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)

	select {
	case <-r.stoppedChan:
	case <-time.After(5 * time.Second):
		r.logger.Warn("Snapshot refresher stop timed out")
	}
}

// LastRefresh returns the time of the last successful refresh
func (r *SnapshotRefresher) LastRefresh() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRefresh
}

func (r *SnapshotRefresher) refresh(ctx context.Context) {
	snapshot, err := r.dashboard.Build(ctx)
	if err != nil {
		r.logger.WithField("error", err.Error()).Error("Failed to refresh dashboard snapshot, keeping previous one")
		return
	}

	r.mu.Lock()
	r.lastRefresh = snapshot.GeneratedAt
	r.mu.Unlock()

	r.logger.WithField("snapshot_id", snapshot.ID.String()).Debug("Dashboard snapshot refreshed")
}
