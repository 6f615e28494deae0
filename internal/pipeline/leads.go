package pipeline

import (
	"sort"

	"github.com/ecombi/dashboard/internal/domain"
)

// UnknownSegment groups qualified leads that carry no segment on either side of the join
const UnknownSegment = "unknown"

// percentage returns num/den*100 clamped to [0, 100], and 0 when den is 0
func percentage(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	rate := float64(num) / float64(den) * 100
	if rate > 100 {
		return 100
	}
	return rate
}

// LeadMetrics summarizes the qualified-to-closed funnel
func LeadMetrics(qualified []domain.QualifiedLead, closed []domain.ClosedLead) domain.LeadMetrics {
	q, c := len(qualified), len(closed)
	m := domain.LeadMetrics{
		TotalQualifiedLeads: q,
		TotalClosedLeads:    c,
		ConversionRate:      percentage(c, q),
	}
	if q > c {
		m.LeadLeakage = q - c
	}
	if q > 0 {
		m.LeakageRate = 100 - m.ConversionRate
	}
	return m
}

type segmentCounts struct {
	total     int
	converted int
}

// LeadConversionBySegment left-joins qualified leads to closed leads on
// mql_id so unconverted leads stay in the denominator. When a lead closes
// more than once the first closed row is used.
func LeadConversionBySegment(qualified []domain.QualifiedLead, closed []domain.ClosedLead) domain.SegmentConversions {
	closedByID := make(map[string]*domain.ClosedLead, len(closed))
	for i := range closed {
		if _, seen := closedByID[closed[i].MQLID]; !seen {
			closedByID[closed[i].MQLID] = &closed[i]
		}
	}

	segments := make(map[string]*segmentCounts)
	for _, lead := range qualified {
		match := closedByID[lead.MQLID]

		segment := lead.BusinessSegment
		if segment == "" && match != nil {
			segment = match.BusinessSegment
		}
		if segment == "" {
			segment = UnknownSegment
		}

		sc, ok := segments[segment]
		if !ok {
			sc = &segmentCounts{}
			segments[segment] = sc
		}
		sc.total++
		if match.IsWon() {
			sc.converted++
		}
	}

	rows := make(domain.SegmentConversions, 0, len(segments))
	for segment, sc := range segments {
		rows = append(rows, domain.SegmentConversion{
			BusinessSegment: segment,
			TotalLeads:      sc.total,
			ConvertedLeads:  sc.converted,
			ConversionRate:  percentage(sc.converted, sc.total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].BusinessSegment < rows[j].BusinessSegment
	})
	return rows
}
