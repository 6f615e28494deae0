package http

import (
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"github.com/ecombi/dashboard/internal/domain"
	pkgmocks "github.com/ecombi/dashboard/pkg/mocks"
)

func newMockLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	return mockLogger
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		ID:          uuid.MustParse("8f14e45f-ceea-467f-a8d7-2a1e4b2d3c11"),
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Reports: &domain.Reports{
			RevenueByCategory: []domain.CategoryRevenue{{Category: "toys", TotalRevenue: 150, OrderCount: 2}},
			RevenueByRegion:   []domain.RegionRevenue{{State: "SP", TotalRevenue: 150, OrderCount: 2}},
			RevenueBySeller:   []domain.SellerRevenue{{SellerID: "s1", TotalRevenue: 150, OrderCount: 2}},
			DeliveryMetrics: domain.DeliveryMetrics{
				{DeliveryDelay: -2, DelayStatus: domain.DelayStatusEarly},
				{DeliveryDelay: 4, DelayStatus: domain.DelayStatusLate},
			},
			SatisfactionOverTime: []domain.MonthlySatisfaction{{Month: "2017-01", MeanReviewScore: 3.5, ReviewCount: 2}},
			LeadMetrics:          domain.LeadMetrics{TotalQualifiedLeads: 2, TotalClosedLeads: 1, ConversionRate: 50, LeadLeakage: 1, LeakageRate: 50},
			LeadConversionBySegment: domain.SegmentConversions{
				{BusinessSegment: "pet", TotalLeads: 2, ConvertedLeads: 1, ConversionRate: 50},
			},
		},
		KPIs:      domain.KPIs{TotalRevenue: 150, TotalOrders: 2, EarlyDeliveryRate: 50, AvgSatisfaction: 3.5, ReviewCount: 2, LeadConversionRate: 50, ClosedLeads: 1, QualifiedLeads: 2},
		RowCounts: map[string]int{domain.TableOrders: 2},
	}
}
