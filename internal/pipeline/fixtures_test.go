package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ecombi/dashboard/internal/domain"
)

func item(orderID, productID, sellerID, price string) domain.OrderItem {
	return domain.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		SellerID:  sellerID,
		Price:     decimal.RequireFromString(price),
	}
}

func order(t *testing.T, orderID, customerID, purchasedAt string, delay int) domain.Order {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, purchasedAt)
	require.NoError(t, err)

	status := domain.DelayStatusOnTime
	switch {
	case delay < 0:
		status = domain.DelayStatusEarly
	case delay > 0:
		status = domain.DelayStatusLate
	}
	return domain.Order{
		OrderID:           orderID,
		CustomerID:        customerID,
		PurchaseTimestamp: ts,
		DeliveryDelay:     delay,
		DelayStatus:       status,
	}
}

func wonAt(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return &ts
}

// testDataset is a small but complete dataset touching every join policy
func testDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	return &domain.Dataset{
		OrderItems: []domain.OrderItem{
			item("o1", "p1", "s1", "100.00"),
			item("o1", "p2", "s2", "50.50"),
			item("o2", "p1", "s1", "80.00"),
			item("o3", "p3", "s3", "20.00"),
			item("o4", "p-missing", "s3", "5.00"),
		},
		Orders: []domain.Order{
			order(t, "o1", "c1", "2017-01-15T10:00:00Z", -5),
			order(t, "o2", "c2", "2017-02-03T09:30:00Z", 0),
			order(t, "o3", "c-missing", "2017-02-20T12:00:00Z", 7),
		},
		Customers: []domain.Customer{
			{CustomerID: "c1", State: "SP"},
			{CustomerID: "c2", State: "RJ"},
		},
		Products: []domain.Product{
			{ProductID: "p1", CategoryName: "brinquedos"},
			{ProductID: "p2", CategoryName: "beleza_saude"},
			{ProductID: "p3", CategoryName: "sem_traducao"},
		},
		CategoryTranslations: []domain.CategoryTranslation{
			{CategoryName: "brinquedos", CategoryNameEnglish: "toys"},
			{CategoryName: "beleza_saude", CategoryNameEnglish: "health_beauty"},
		},
		OrderReviews: []domain.OrderReview{
			{OrderID: "o1", ReviewScore: 5},
			{OrderID: "o2", ReviewScore: 3},
			{OrderID: "o3", ReviewScore: 4},
			{OrderID: "o-missing", ReviewScore: 1},
		},
		QualifiedLeads: []domain.QualifiedLead{
			{MQLID: "m1", BusinessSegment: "pet"},
			{MQLID: "m2", BusinessSegment: "pet"},
			{MQLID: "m3", BusinessSegment: "toys"},
		},
		ClosedLeads: []domain.ClosedLead{
			{MQLID: "m1", BusinessSegment: "pet", WonDate: wonAt(t, "2018-03-01")},
		},
	}
}
