package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// DelayStatus is the delivery bucket computed upstream from delivery_delay
type DelayStatus string

const (
	DelayStatusEarly  DelayStatus = "Early"
	DelayStatusOnTime DelayStatus = "On Time"
	DelayStatusLate   DelayStatus = "Late"
)

// DelayStatuses lists the statuses in display order
var DelayStatuses = []DelayStatus{DelayStatusEarly, DelayStatusOnTime, DelayStatusLate}

// ParseDelayStatus accepts the exact labels as well as the compact forms
// ("OnTime", "on_time") some exports use
func ParseDelayStatus(raw string) (DelayStatus, error) {
	normalized := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case "early":
		return DelayStatusEarly, nil
	case "ontime":
		return DelayStatusOnTime, nil
	case "late":
		return DelayStatusLate, nil
	default:
		return "", fmt.Errorf("invalid delay status %q", raw)
	}
}

// OrderItem is one line of an order. Price is kept as a decimal so sums
// are exact regardless of accumulation order.
type OrderItem struct {
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	SellerID  string          `json:"seller_id"`
	Price     decimal.Decimal `json:"price"`
}

func (i *OrderItem) Validate() error {
	if i.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative (got %s)", i.Price.String())
	}
	return nil
}

type Order struct {
	OrderID           string      `json:"order_id"`
	CustomerID        string      `json:"customer_id"`
	PurchaseTimestamp time.Time   `json:"order_purchase_timestamp"`
	DeliveryDelay     int         `json:"delivery_delay"`
	DelayStatus       DelayStatus `json:"delay_status"`
}

func (o *Order) Validate() error {
	if o.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	if !govalidator.IsIn(string(o.DelayStatus), string(DelayStatusEarly), string(DelayStatusOnTime), string(DelayStatusLate)) {
		return fmt.Errorf("invalid delay status %q", o.DelayStatus)
	}
	return nil
}

type Customer struct {
	CustomerID string `json:"customer_id"`
	State      string `json:"customer_state"`
}

type Product struct {
	ProductID    string `json:"product_id"`
	CategoryName string `json:"product_category_name"`
}

// CategoryTranslation maps a source-language category to its English label
type CategoryTranslation struct {
	CategoryName        string `json:"product_category_name"`
	CategoryNameEnglish string `json:"product_category_name_english"`
}

type OrderReview struct {
	OrderID     string `json:"order_id"`
	ReviewScore int    `json:"review_score"`
}

const (
	MinReviewScore = 1
	MaxReviewScore = 5
)

func (r *OrderReview) Validate() error {
	if r.OrderID == "" {
		return fmt.Errorf("order_id is required")
	}
	if !govalidator.InRangeInt(r.ReviewScore, MinReviewScore, MaxReviewScore) {
		return fmt.Errorf("review_score must be between %d and %d (got %d)", MinReviewScore, MaxReviewScore, r.ReviewScore)
	}
	return nil
}

// QualifiedLead is a marketing-qualified lead (MQL)
type QualifiedLead struct {
	MQLID            string     `json:"mql_id"`
	BusinessSegment  string     `json:"business_segment,omitempty"`
	FirstContactDate *time.Time `json:"first_contact_date,omitempty"`
	Origin           string     `json:"origin,omitempty"`
}

// ClosedLead is a lead that became a deal. WonDate is nil when the source
// row carries no close date.
type ClosedLead struct {
	MQLID           string     `json:"mql_id"`
	BusinessSegment string     `json:"business_segment,omitempty"`
	WonDate         *time.Time `json:"won_date,omitempty"`
}

func (l *ClosedLead) IsWon() bool {
	return l != nil && l.WonDate != nil
}

// Dataset groups the read-only input tables handed to the pipeline
type Dataset struct {
	OrderItems           []OrderItem
	Orders               []Order
	Customers            []Customer
	Products             []Product
	CategoryTranslations []CategoryTranslation
	OrderReviews         []OrderReview
	QualifiedLeads       []QualifiedLead
	ClosedLeads          []ClosedLead
}

// RowCounts reports the number of rows per table, keyed by table name
func (d *Dataset) RowCounts() map[string]int {
	if d == nil {
		return map[string]int{}
	}
	return map[string]int{
		TableOrderItems:           len(d.OrderItems),
		TableOrders:               len(d.Orders),
		TableCustomers:            len(d.Customers),
		TableProducts:             len(d.Products),
		TableCategoryTranslations: len(d.CategoryTranslations),
		TableOrderReviews:         len(d.OrderReviews),
		TableQualifiedLeads:       len(d.QualifiedLeads),
		TableClosedLeads:          len(d.ClosedLeads),
	}
}
