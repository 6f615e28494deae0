package service

import (
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/ecombi/dashboard/internal/domain"
	pkgmocks "github.com/ecombi/dashboard/pkg/mocks"
)

func newMockLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)

	// Configure logger to handle any calls
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Fatal(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	return mockLogger
}

func createTestDataset() *domain.Dataset {
	won := time.Date(2018, time.April, 1, 0, 0, 0, 0, time.UTC)
	return &domain.Dataset{
		OrderItems: []domain.OrderItem{
			{OrderID: "o1", ProductID: "p1", SellerID: "s1", Price: decimal.RequireFromString("120.00")},
			{OrderID: "o2", ProductID: "p1", SellerID: "s2", Price: decimal.RequireFromString("30.00")},
		},
		Orders: []domain.Order{
			{OrderID: "o1", CustomerID: "c1", PurchaseTimestamp: time.Date(2017, time.May, 3, 0, 0, 0, 0, time.UTC), DeliveryDelay: -8, DelayStatus: domain.DelayStatusEarly},
			{OrderID: "o2", CustomerID: "c1", PurchaseTimestamp: time.Date(2017, time.June, 9, 0, 0, 0, 0, time.UTC), DeliveryDelay: 3, DelayStatus: domain.DelayStatusLate},
		},
		Customers:            []domain.Customer{{CustomerID: "c1", State: "SP"}},
		Products:             []domain.Product{{ProductID: "p1", CategoryName: "cama_mesa_banho"}},
		CategoryTranslations: []domain.CategoryTranslation{{CategoryName: "cama_mesa_banho", CategoryNameEnglish: "bed_bath_table"}},
		OrderReviews: []domain.OrderReview{
			{OrderID: "o1", ReviewScore: 5},
			{OrderID: "o2", ReviewScore: 2},
		},
		QualifiedLeads: []domain.QualifiedLead{{MQLID: "m1", BusinessSegment: "home_decor"}, {MQLID: "m2", BusinessSegment: "home_decor"}},
		ClosedLeads:    []domain.ClosedLead{{MQLID: "m1", BusinessSegment: "home_decor", WonDate: &won}},
	}
}
