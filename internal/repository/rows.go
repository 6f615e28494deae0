package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecombi/dashboard/internal/domain"
)

// tableReader yields the rows of one input table. Next returns io.EOF after
// the last row.
type tableReader interface {
	Columns() []string
	Next() (row, error)
	Close() error
}

// openTableFunc opens the reader for a table name
type openTableFunc func(ctx context.Context, table string) (tableReader, error)

// row is a single source record keyed by column name
type row struct {
	line   int
	values map[string]string
}

func (r row) str(col string) string {
	return strings.TrimSpace(r.values[col])
}

func (r row) decimal(col string) (decimal.Decimal, error) {
	raw := r.str(col)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", col, raw, err)
	}
	return d, nil
}

// integer accepts whole numbers written as floats ("-3.0"), which is how
// dataframe exports write nullable integer columns
func (r row) integer(col string) (int, error) {
	raw := r.str(col)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.Trunc(f) != f || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s %q: not an integer", col, raw)
	}
	// float64(math.MaxInt) rounds up to 2^63 on 64-bit platforms
	if f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("invalid %s %q: out of range", col, raw)
	}
	return int(f), nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (r row) time(col string) (time.Time, error) {
	raw := r.str(col)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q: unsupported time format", col, raw)
}

// optionalTime returns nil for empty and NULL-like values
func (r row) optionalTime(col string) (*time.Time, error) {
	switch strings.ToLower(r.str(col)) {
	case "", "nan", "nat", "null", "none":
		return nil, nil
	}
	t, err := r.time(col)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeOrderItem(r row) (domain.OrderItem, error) {
	price, err := r.decimal("price")
	if err != nil {
		return domain.OrderItem{}, err
	}
	item := domain.OrderItem{
		OrderID:   r.str("order_id"),
		ProductID: r.str("product_id"),
		SellerID:  r.str("seller_id"),
		Price:     price,
	}
	return item, item.Validate()
}

func decodeOrder(r row) (domain.Order, error) {
	purchasedAt, err := r.time("order_purchase_timestamp")
	if err != nil {
		return domain.Order{}, err
	}
	delay, err := r.integer("delivery_delay")
	if err != nil {
		return domain.Order{}, err
	}
	status, err := domain.ParseDelayStatus(r.str("delay_status"))
	if err != nil {
		return domain.Order{}, err
	}
	o := domain.Order{
		OrderID:           r.str("order_id"),
		CustomerID:        r.str("customer_id"),
		PurchaseTimestamp: purchasedAt,
		DeliveryDelay:     delay,
		DelayStatus:       status,
	}
	return o, o.Validate()
}

func decodeCustomer(r row) (domain.Customer, error) {
	return domain.Customer{CustomerID: r.str("customer_id"), State: r.str("customer_state")}, nil
}

func decodeProduct(r row) (domain.Product, error) {
	return domain.Product{ProductID: r.str("product_id"), CategoryName: r.str("product_category_name")}, nil
}

func decodeCategoryTranslation(r row) (domain.CategoryTranslation, error) {
	return domain.CategoryTranslation{
		CategoryName:        r.str("product_category_name"),
		CategoryNameEnglish: r.str("product_category_name_english"),
	}, nil
}

func decodeOrderReview(r row) (domain.OrderReview, error) {
	score, err := r.integer("review_score")
	if err != nil {
		return domain.OrderReview{}, err
	}
	review := domain.OrderReview{OrderID: r.str("order_id"), ReviewScore: score}
	return review, review.Validate()
}

func decodeQualifiedLead(r row) (domain.QualifiedLead, error) {
	firstContact, err := r.optionalTime("first_contact_date")
	if err != nil {
		return domain.QualifiedLead{}, err
	}
	lead := domain.QualifiedLead{
		MQLID:            r.str("mql_id"),
		BusinessSegment:  r.str("business_segment"),
		FirstContactDate: firstContact,
		Origin:           r.str("origin"),
	}
	if lead.MQLID == "" {
		return lead, errors.New("mql_id is required")
	}
	return lead, nil
}

func decodeClosedLead(r row) (domain.ClosedLead, error) {
	wonDate, err := r.optionalTime("won_date")
	if err != nil {
		return domain.ClosedLead{}, err
	}
	lead := domain.ClosedLead{
		MQLID:           r.str("mql_id"),
		BusinessSegment: r.str("business_segment"),
		WonDate:         wonDate,
	}
	if lead.MQLID == "" {
		return lead, errors.New("mql_id is required")
	}
	return lead, nil
}

// loadTable opens one table, checks its columns against the registry and
// decodes every row. The first bad row aborts the load.
func loadTable[T any](ctx context.Context, open openTableFunc, table string, decode func(row) (T, error)) ([]T, error) {
	def, err := domain.LookupTable(table)
	if err != nil {
		return nil, err
	}

	reader, err := open(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", table, err)
	}
	defer reader.Close()

	if err := def.RequireColumns(reader.Columns()); err != nil {
		return nil, err
	}

	out := make([]T, 0)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read table %s: %w", table, err)
		}
		v, err := decode(r)
		if err != nil {
			return nil, &domain.RowError{Table: table, Line: r.line, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// loadDataset reads the eight input tables through open
func loadDataset(ctx context.Context, open openTableFunc) (*domain.Dataset, error) {
	ds := &domain.Dataset{}
	var err error

	if ds.OrderItems, err = loadTable(ctx, open, domain.TableOrderItems, decodeOrderItem); err != nil {
		return nil, err
	}
	if ds.Orders, err = loadTable(ctx, open, domain.TableOrders, decodeOrder); err != nil {
		return nil, err
	}
	if ds.Customers, err = loadTable(ctx, open, domain.TableCustomers, decodeCustomer); err != nil {
		return nil, err
	}
	if ds.Products, err = loadTable(ctx, open, domain.TableProducts, decodeProduct); err != nil {
		return nil, err
	}
	if ds.CategoryTranslations, err = loadTable(ctx, open, domain.TableCategoryTranslations, decodeCategoryTranslation); err != nil {
		return nil, err
	}
	if ds.OrderReviews, err = loadTable(ctx, open, domain.TableOrderReviews, decodeOrderReview); err != nil {
		return nil, err
	}
	if ds.QualifiedLeads, err = loadTable(ctx, open, domain.TableQualifiedLeads, decodeQualifiedLead); err != nil {
		return nil, err
	}
	if ds.ClosedLeads, err = loadTable(ctx, open, domain.TableClosedLeads, decodeClosedLead); err != nil {
		return nil, err
	}
	return ds, nil
}
