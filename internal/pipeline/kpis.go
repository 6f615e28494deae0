package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/ecombi/dashboard/internal/domain"
)

// ComputeKPIs derives the headline card values from a finished report set.
// reviewCount is the size of the full review table, not only the reviews
// that joined to an order.
func ComputeKPIs(reports *domain.Reports, reviewCount int) domain.KPIs {
	if reports == nil {
		return domain.KPIs{ReviewCount: reviewCount}
	}

	revenue := decimal.Zero
	orders := 0
	for _, row := range reports.RevenueByCategory {
		revenue = revenue.Add(decimal.NewFromFloat(row.TotalRevenue))
		orders += row.OrderCount
	}

	avgSatisfaction := 0.0
	if n := len(reports.SatisfactionOverTime); n > 0 {
		sum := 0.0
		for _, m := range reports.SatisfactionOverTime {
			sum += m.MeanReviewScore
		}
		avgSatisfaction = sum / float64(n)
	}

	return domain.KPIs{
		TotalRevenue:       revenue.InexactFloat64(),
		TotalOrders:        orders,
		EarlyDeliveryRate:  reports.DeliveryMetrics.Share(domain.DelayStatusEarly),
		AvgSatisfaction:    avgSatisfaction,
		ReviewCount:        reviewCount,
		LeadConversionRate: reports.LeadMetrics.ConversionRate,
		ClosedLeads:        reports.LeadMetrics.TotalClosedLeads,
		QualifiedLeads:     reports.LeadMetrics.TotalQualifiedLeads,
	}
}
