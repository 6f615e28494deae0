package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Report keys exposed by the pipeline output mapping
const (
	ReportRevenueByCategory       = "revenue_by_category"
	ReportRevenueByRegion         = "revenue_by_region"
	ReportRevenueBySeller         = "revenue_by_seller"
	ReportDeliveryMetrics         = "delivery_metrics"
	ReportSatisfactionOverTime    = "satisfaction_over_time"
	ReportLeadMetrics             = "lead_metrics"
	ReportLeadConversionBySegment = "lead_conversion_by_segment"
)

// ReportNames lists every report key in output order
var ReportNames = []string{
	ReportRevenueByCategory,
	ReportRevenueByRegion,
	ReportRevenueBySeller,
	ReportDeliveryMetrics,
	ReportSatisfactionOverTime,
	ReportLeadMetrics,
	ReportLeadConversionBySegment,
}

// SellerReportLimit caps the revenue_by_seller report
const SellerReportLimit = 20

type CategoryRevenue struct {
	Category     string  `json:"category_english_name"`
	TotalRevenue float64 `json:"total_revenue"`
	OrderCount   int     `json:"order_count"`
}

type RegionRevenue struct {
	State        string  `json:"state"`
	TotalRevenue float64 `json:"total_revenue"`
	OrderCount   int     `json:"order_count"`
}

type SellerRevenue struct {
	SellerID     string  `json:"seller_id"`
	TotalRevenue float64 `json:"total_revenue"`
	OrderCount   int     `json:"order_count"`
}

// MonthlySatisfaction is one calendar month of review scores. Month is
// formatted as YYYY-MM.
type MonthlySatisfaction struct {
	Month           string  `json:"calendar_month"`
	MeanReviewScore float64 `json:"mean_review_score"`
	ReviewCount     int     `json:"review_count"`
}

type LeadMetrics struct {
	TotalQualifiedLeads int     `json:"total_qualified_leads"`
	TotalClosedLeads    int     `json:"total_closed_leads"`
	ConversionRate      float64 `json:"conversion_rate"`
	LeadLeakage         int     `json:"lead_leakage"`
	LeakageRate         float64 `json:"leakage_rate"`
}

type SegmentConversion struct {
	BusinessSegment string  `json:"business_segment"`
	TotalLeads      int     `json:"total_leads"`
	ConvertedLeads  int     `json:"converted_leads"`
	ConversionRate  float64 `json:"conversion_rate"`
}

type SegmentConversions []SegmentConversion

// TopSegments returns the n segments with the highest conversion rate.
// Equal rates keep their current relative order.
func (s SegmentConversions) TopSegments(n int) SegmentConversions {
	if n <= 0 {
		return SegmentConversions{}
	}
	top := make(SegmentConversions, len(s))
	copy(top, s)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].ConversionRate > top[j].ConversionRate
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// Reports is the immutable output of one pipeline run
type Reports struct {
	RevenueByCategory       []CategoryRevenue     `json:"revenue_by_category"`
	RevenueByRegion         []RegionRevenue       `json:"revenue_by_region"`
	RevenueBySeller         []SellerRevenue       `json:"revenue_by_seller"`
	DeliveryMetrics         DeliveryMetrics       `json:"delivery_metrics"`
	SatisfactionOverTime    []MonthlySatisfaction `json:"satisfaction_over_time"`
	LeadMetrics             LeadMetrics           `json:"lead_metrics"`
	LeadConversionBySegment SegmentConversions    `json:"lead_conversion_by_segment"`
}

// AsMap returns the report-name to report-data mapping
func (r *Reports) AsMap() map[string]interface{} {
	return map[string]interface{}{
		ReportRevenueByCategory:       r.RevenueByCategory,
		ReportRevenueByRegion:         r.RevenueByRegion,
		ReportRevenueBySeller:         r.RevenueBySeller,
		ReportDeliveryMetrics:         r.DeliveryMetrics,
		ReportSatisfactionOverTime:    r.SatisfactionOverTime,
		ReportLeadMetrics:             r.LeadMetrics,
		ReportLeadConversionBySegment: r.LeadConversionBySegment,
	}
}

// Report looks a single report up by key
func (r *Reports) Report(name string) (interface{}, error) {
	report, ok := r.AsMap()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
	return report, nil
}

// KPIs are the headline card values shown above the tabs
type KPIs struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalOrders        int     `json:"total_orders"`
	EarlyDeliveryRate  float64 `json:"early_delivery_rate"`
	AvgSatisfaction    float64 `json:"avg_satisfaction"`
	ReviewCount        int     `json:"review_count"`
	LeadConversionRate float64 `json:"lead_conversion_rate"`
	ClosedLeads        int     `json:"closed_leads"`
	QualifiedLeads     int     `json:"qualified_leads"`
}

// ReviewScoreCount is the number of reviews given a particular score
type ReviewScoreCount struct {
	Score int `json:"review_score"`
	Count int `json:"count"`
}

// Snapshot is one published set of reports. A snapshot is never mutated
// once stored; a refresh publishes a new one.
type Snapshot struct {
	ID                 uuid.UUID          `json:"id"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Reports            *Reports           `json:"reports"`
	KPIs               KPIs               `json:"kpis"`
	ReviewDistribution []ReviewScoreCount `json:"review_distribution"`
	RowCounts          map[string]int     `json:"row_counts"`
}

// SnapshotInfo is the metadata part of a snapshot
type SnapshotInfo struct {
	ID          uuid.UUID      `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	RowCounts   map[string]int `json:"row_counts"`
}

func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{ID: s.ID, GeneratedAt: s.GeneratedAt, RowCounts: s.RowCounts}
}
