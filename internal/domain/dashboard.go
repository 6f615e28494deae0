package domain

import (
	"context"
	"fmt"
)

//go:generate mockgen -destination mocks/mock_dashboard_service.go -package mocks github.com/ecombi/dashboard/internal/domain DashboardService
//go:generate mockgen -destination mocks/mock_dataset_repository.go -package mocks github.com/ecombi/dashboard/internal/domain DatasetRepository

// Dashboard view keys
const (
	TabRevenue      = "tab-revenue"
	TabDelivery     = "tab-delivery"
	TabSatisfaction = "tab-satisfaction"
	TabLeads        = "tab-leads"
)

var Tabs = []string{TabRevenue, TabDelivery, TabSatisfaction, TabLeads}

// Display slice sizes used by the views
const (
	TopCategoriesShown = 15
	TopRegionsShown    = 10
	TopSellersShown    = 10
	TopSegmentsShown   = 10
)

// TabView is the data one dashboard view reads: the reports it charts and
// the display-ready values derived from them
type TabView struct {
	Tab     string                 `json:"tab"`
	Reports map[string]interface{} `json:"reports"`
	Display map[string]interface{} `json:"display"`
}

// BuildTabView slices a snapshot for the given view. It only reads the
// snapshot and never recomputes a report.
func BuildTabView(snapshot *Snapshot, tab string) (*TabView, error) {
	if snapshot == nil || snapshot.Reports == nil {
		return nil, ErrSnapshotNotReady
	}
	r := snapshot.Reports

	switch tab {
	case TabRevenue:
		return &TabView{
			Tab: tab,
			Reports: map[string]interface{}{
				ReportRevenueByCategory: r.RevenueByCategory,
				ReportRevenueByRegion:   r.RevenueByRegion,
				ReportRevenueBySeller:   r.RevenueBySeller,
			},
			Display: map[string]interface{}{
				"top_categories": head(r.RevenueByCategory, TopCategoriesShown),
				"top_regions":    head(r.RevenueByRegion, TopRegionsShown),
				"top_sellers":    head(r.RevenueBySeller, TopSellersShown),
			},
		}, nil
	case TabDelivery:
		return &TabView{
			Tab: tab,
			Reports: map[string]interface{}{
				ReportDeliveryMetrics: r.DeliveryMetrics,
			},
			Display: map[string]interface{}{
				"summary":       r.DeliveryMetrics.Summary(),
				"status_counts": r.DeliveryMetrics.StatusCounts(),
				"histogram":     r.DeliveryMetrics.Histogram(DelayHistogramBins, DelayClipLow, DelayClipHigh),
			},
		}, nil
	case TabSatisfaction:
		return &TabView{
			Tab: tab,
			Reports: map[string]interface{}{
				ReportSatisfactionOverTime: r.SatisfactionOverTime,
			},
			Display: map[string]interface{}{
				"review_distribution": snapshot.ReviewDistribution,
			},
		}, nil
	case TabLeads:
		return &TabView{
			Tab: tab,
			Reports: map[string]interface{}{
				ReportLeadMetrics:             r.LeadMetrics,
				ReportLeadConversionBySegment: r.LeadConversionBySegment,
			},
			Display: map[string]interface{}{
				"top_segments": r.LeadConversionBySegment.TopSegments(TopSegmentsShown),
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
}

func head[T any](rows []T, n int) []T {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}

// DatasetRepository loads the input tables from a data source
type DatasetRepository interface {
	// LoadDataset reads every input table and fails on the first schema or row error
	LoadDataset(ctx context.Context) (*Dataset, error)

	// Source names the backing store, e.g. "csv" or "postgres"
	Source() string
}

// DashboardService owns the published report snapshot
type DashboardService interface {
	// Build loads the dataset, computes every report and publishes a new snapshot
	Build(ctx context.Context) (*Snapshot, error)

	// Snapshot returns the current snapshot or ErrSnapshotNotReady
	Snapshot() (*Snapshot, error)

	// Report returns one report from the current snapshot
	Report(name string) (interface{}, error)

	// Tab returns the data read by one dashboard view
	Tab(tab string) (*TabView, error)

	// KPIs returns the headline card values of the current snapshot
	KPIs() (*KPIs, error)
}
