package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ecombi/dashboard/internal/domain"
)

// revenueGroup accumulates one group of a revenue report
type revenueGroup struct {
	key    string
	total  decimal.Decimal
	orders map[string]struct{}
}

// revenueAccumulator keeps groups in first-appearance order so the stable
// sort breaks ties by input order
type revenueAccumulator struct {
	index  map[string]int
	groups []*revenueGroup
}

func newRevenueAccumulator() *revenueAccumulator {
	return &revenueAccumulator{index: make(map[string]int)}
}

func (a *revenueAccumulator) add(key, orderID string, price decimal.Decimal) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.groups)
		a.index[key] = i
		a.groups = append(a.groups, &revenueGroup{
			key:    key,
			total:  decimal.Zero,
			orders: make(map[string]struct{}),
		})
	}
	g := a.groups[i]
	g.total = g.total.Add(price)
	g.orders[orderID] = struct{}{}
}

// sorted returns the groups by descending revenue
func (a *revenueAccumulator) sorted() []*revenueGroup {
	out := make([]*revenueGroup, len(a.groups))
	copy(out, a.groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].total.GreaterThan(out[j].total)
	})
	return out
}

// RevenueByCategory inner-joins items to products and category translations
// and sums revenue per English category name. Items whose product or
// category cannot be resolved are dropped.
func RevenueByCategory(items []domain.OrderItem, products []domain.Product, translations []domain.CategoryTranslation) []domain.CategoryRevenue {
	categoryByProduct := make(map[string]string, len(products))
	for _, p := range products {
		if _, seen := categoryByProduct[p.ProductID]; !seen {
			categoryByProduct[p.ProductID] = p.CategoryName
		}
	}
	englishByCategory := make(map[string]string, len(translations))
	for _, t := range translations {
		if _, seen := englishByCategory[t.CategoryName]; !seen {
			englishByCategory[t.CategoryName] = t.CategoryNameEnglish
		}
	}

	acc := newRevenueAccumulator()
	for _, item := range items {
		category, ok := categoryByProduct[item.ProductID]
		if !ok {
			continue
		}
		english, ok := englishByCategory[category]
		if !ok {
			continue
		}
		acc.add(english, item.OrderID, item.Price)
	}

	groups := acc.sorted()
	rows := make([]domain.CategoryRevenue, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.CategoryRevenue{
			Category:     g.key,
			TotalRevenue: g.total.InexactFloat64(),
			OrderCount:   len(g.orders),
		})
	}
	return rows
}

// RevenueByRegion inner-joins items to orders and customers and sums
// revenue per customer state
func RevenueByRegion(items []domain.OrderItem, orders []domain.Order, customers []domain.Customer) []domain.RegionRevenue {
	customerByOrder := make(map[string]string, len(orders))
	for _, o := range orders {
		if _, seen := customerByOrder[o.OrderID]; !seen {
			customerByOrder[o.OrderID] = o.CustomerID
		}
	}
	stateByCustomer := make(map[string]string, len(customers))
	for _, c := range customers {
		if _, seen := stateByCustomer[c.CustomerID]; !seen {
			stateByCustomer[c.CustomerID] = c.State
		}
	}

	acc := newRevenueAccumulator()
	for _, item := range items {
		customerID, ok := customerByOrder[item.OrderID]
		if !ok {
			continue
		}
		state, ok := stateByCustomer[customerID]
		if !ok {
			continue
		}
		acc.add(state, item.OrderID, item.Price)
	}

	groups := acc.sorted()
	rows := make([]domain.RegionRevenue, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.RegionRevenue{
			State:        g.key,
			TotalRevenue: g.total.InexactFloat64(),
			OrderCount:   len(g.orders),
		})
	}
	return rows
}

// RevenueBySeller sums revenue per seller and keeps the top limit sellers.
// A limit of zero or less keeps every seller.
func RevenueBySeller(items []domain.OrderItem, limit int) []domain.SellerRevenue {
	acc := newRevenueAccumulator()
	for _, item := range items {
		acc.add(item.SellerID, item.OrderID, item.Price)
	}

	groups := acc.sorted()
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	rows := make([]domain.SellerRevenue, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, domain.SellerRevenue{
			SellerID:     g.key,
			TotalRevenue: g.total.InexactFloat64(),
			OrderCount:   len(g.orders),
		})
	}
	return rows
}
