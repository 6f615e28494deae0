package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/internal/pipeline"
	"github.com/ecombi/dashboard/pkg/logger"
	"github.com/ecombi/dashboard/pkg/tracing"
)

// DashboardService computes report snapshots and serves reads from the
// latest published one
type DashboardService struct {
	repo     domain.DatasetRepository
	logger   logger.Logger
	snapshot atomic.Pointer[domain.Snapshot]
	buildMu  sync.Mutex
	now      func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo domain.DatasetRepository, logger logger.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Build loads the dataset, runs the pipeline and publishes the result.
// Concurrent calls are serialized. On failure the previous snapshot stays
// published.
func (s *DashboardService) Build(ctx context.Context) (*domain.Snapshot, error) {
	// codecov:ignore:start
	ctx, span := tracing.StartServiceSpan(ctx, "DashboardService", "Build")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "source", s.repo.Source())
	// codecov:ignore:end

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := s.now()

	ds, err := s.repo.LoadDataset(ctx)
	if err != nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, err)
		// codecov:ignore:end
		s.logger.WithField("error", err.Error()).Error("Failed to load dataset")
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	reports, err := pipeline.Run(ctx, ds)
	if err != nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, err)
		// codecov:ignore:end
		s.logger.WithField("error", err.Error()).Error("Failed to compute reports")
		return nil, fmt.Errorf("failed to compute reports: %w", err)
	}

	snapshot := &domain.Snapshot{
		ID:                 uuid.New(),
		GeneratedAt:        s.now().UTC(),
		Reports:            reports,
		KPIs:               pipeline.ComputeKPIs(reports, len(ds.OrderReviews)),
		ReviewDistribution: pipeline.ReviewScoreDistribution(ds.OrderReviews),
		RowCounts:          ds.RowCounts(),
	}
	s.snapshot.Store(snapshot)

	s.logger.WithFields(map[string]interface{}{
		"snapshot_id": snapshot.ID.String(),
		"source":      s.repo.Source(),
		"duration_ms": s.now().Sub(start).Milliseconds(),
	}).Info("Published dashboard snapshot")

	return snapshot, nil
}

// Snapshot returns the latest published snapshot
func (s *DashboardService) Snapshot() (*domain.Snapshot, error) {
	snapshot := s.snapshot.Load()
	if snapshot == nil {
		return nil, domain.ErrSnapshotNotReady
	}
	return snapshot, nil
}

func (s *DashboardService) Report(name string) (interface{}, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snapshot.Reports.Report(name)
}

func (s *DashboardService) Tab(tab string) (*domain.TabView, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return domain.BuildTabView(snapshot, tab)
}

func (s *DashboardService) KPIs() (*domain.KPIs, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	kpis := snapshot.KPIs
	return &kpis, nil
}
