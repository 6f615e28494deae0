package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/sync/errgroup"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/tracing"
)

// Run computes all seven reports from the dataset. The reports share only
// read-only inputs and are computed concurrently; each goroutine writes a
// distinct field of the result.
func Run(ctx context.Context, ds *domain.Dataset) (*domain.Reports, error) {
	// codecov:ignore:start
	ctx, span := tracing.StartServiceSpan(ctx, "Pipeline", "Run")
	defer tracing.EndSpan(span, nil)
	// codecov:ignore:end

	if ds == nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, domain.ErrNilDataset)
		// codecov:ignore:end
		return nil, domain.ErrNilDataset
	}

	start := time.Now()
	reports := &domain.Reports{}

	g, gctx := errgroup.WithContext(ctx)
	step := func(fn func()) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	step(func() {
		reports.RevenueByCategory = RevenueByCategory(ds.OrderItems, ds.Products, ds.CategoryTranslations)
	})
	step(func() {
		reports.RevenueByRegion = RevenueByRegion(ds.OrderItems, ds.Orders, ds.Customers)
	})
	step(func() {
		reports.RevenueBySeller = RevenueBySeller(ds.OrderItems, domain.SellerReportLimit)
	})
	step(func() {
		reports.DeliveryMetrics = DeliveryMetrics(ds.Orders)
	})
	step(func() {
		reports.SatisfactionOverTime = SatisfactionOverTime(ds.OrderReviews, ds.Orders)
	})
	step(func() {
		reports.LeadMetrics = LeadMetrics(ds.QualifiedLeads, ds.ClosedLeads)
	})
	step(func() {
		reports.LeadConversionBySegment = LeadConversionBySegment(ds.QualifiedLeads, ds.ClosedLeads)
	})

	if err := g.Wait(); err != nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, err)
		// codecov:ignore:end
		return nil, fmt.Errorf("failed to compute reports: %w", err)
	}

	recordRun(ctx, reports, time.Since(start))

	// codecov:ignore:start
	tracing.AddAttribute(ctx, "order_items", len(ds.OrderItems))
	tracing.AddAttribute(ctx, "qualified_leads", len(ds.QualifiedLeads))
	// codecov:ignore:end

	return reports, nil
}

func recordRun(ctx context.Context, reports *domain.Reports, elapsed time.Duration) {
	stats.Record(ctx, RunLatencyMs.M(float64(elapsed)/float64(time.Millisecond)))

	rows := map[string]int{
		domain.ReportRevenueByCategory:       len(reports.RevenueByCategory),
		domain.ReportRevenueByRegion:         len(reports.RevenueByRegion),
		domain.ReportRevenueBySeller:         len(reports.RevenueBySeller),
		domain.ReportDeliveryMetrics:         len(reports.DeliveryMetrics),
		domain.ReportSatisfactionOverTime:    len(reports.SatisfactionOverTime),
		domain.ReportLeadMetrics:             1,
		domain.ReportLeadConversionBySegment: len(reports.LeadConversionBySegment),
	}
	for name, n := range rows {
		_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyReport, name)}, ReportRows.M(int64(n)))
	}
}
