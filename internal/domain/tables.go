package domain

import (
	"fmt"
	"sort"
)

// Input table names. They double as CSV file stems and PostgreSQL table names.
const (
	TableOrderItems           = "order_items"
	TableOrders               = "orders"
	TableCustomers            = "customers"
	TableProducts             = "products"
	TableCategoryTranslations = "product_category_name_translation"
	TableOrderReviews         = "order_reviews"
	TableQualifiedLeads       = "qualified_leads"
	TableClosedLeads          = "closed_leads"
)

type ColumnType string

const (
	ColumnTypeString  ColumnType = "string"
	ColumnTypeDecimal ColumnType = "decimal"
	ColumnTypeInteger ColumnType = "integer"
	ColumnTypeTime    ColumnType = "time"
)

type ColumnDefinition struct {
	Type        ColumnType `json:"type"`
	Title       string     `json:"title"`
	Required    bool       `json:"required"`
	Description string     `json:"description"`
}

type TableDefinition struct {
	Name    string                      `json:"name"`
	Columns map[string]ColumnDefinition `json:"columns"`
}

// PredefinedTables declares the input tables and the columns each one must carry
var PredefinedTables = map[string]TableDefinition{
	TableOrderItems: {
		Name: TableOrderItems,
		Columns: map[string]ColumnDefinition{
			"order_id":   {Type: ColumnTypeString, Title: "Order ID", Required: true, Description: "Order the item belongs to"},
			"product_id": {Type: ColumnTypeString, Title: "Product ID", Required: true, Description: "Product sold"},
			"seller_id":  {Type: ColumnTypeString, Title: "Seller ID", Required: true, Description: "Seller fulfilling the item"},
			"price":      {Type: ColumnTypeDecimal, Title: "Price", Required: true, Description: "Item price"},
		},
	},
	TableOrders: {
		Name: TableOrders,
		Columns: map[string]ColumnDefinition{
			"order_id":                 {Type: ColumnTypeString, Title: "Order ID", Required: true, Description: "Order identifier"},
			"customer_id":              {Type: ColumnTypeString, Title: "Customer ID", Required: true, Description: "Customer who placed the order"},
			"order_purchase_timestamp": {Type: ColumnTypeTime, Title: "Purchased At", Required: true, Description: "Purchase timestamp"},
			"delivery_delay":           {Type: ColumnTypeInteger, Title: "Delivery Delay", Required: true, Description: "Days between estimated and actual delivery, negative when early"},
			"delay_status":             {Type: ColumnTypeString, Title: "Delay Status", Required: true, Description: "Early, On Time or Late"},
		},
	},
	TableCustomers: {
		Name: TableCustomers,
		Columns: map[string]ColumnDefinition{
			"customer_id":    {Type: ColumnTypeString, Title: "Customer ID", Required: true, Description: "Customer identifier"},
			"customer_state": {Type: ColumnTypeString, Title: "State", Required: true, Description: "Customer state code"},
		},
	},
	TableProducts: {
		Name: TableProducts,
		Columns: map[string]ColumnDefinition{
			"product_id":            {Type: ColumnTypeString, Title: "Product ID", Required: true, Description: "Product identifier"},
			"product_category_name": {Type: ColumnTypeString, Title: "Category", Required: true, Description: "Source-language category name"},
		},
	},
	TableCategoryTranslations: {
		Name: TableCategoryTranslations,
		Columns: map[string]ColumnDefinition{
			"product_category_name":         {Type: ColumnTypeString, Title: "Category", Required: true, Description: "Source-language category name"},
			"product_category_name_english": {Type: ColumnTypeString, Title: "Category (English)", Required: true, Description: "English category label"},
		},
	},
	TableOrderReviews: {
		Name: TableOrderReviews,
		Columns: map[string]ColumnDefinition{
			"order_id":     {Type: ColumnTypeString, Title: "Order ID", Required: true, Description: "Reviewed order"},
			"review_score": {Type: ColumnTypeInteger, Title: "Score", Required: true, Description: "Review score from 1 to 5"},
		},
	},
	TableQualifiedLeads: {
		Name: TableQualifiedLeads,
		Columns: map[string]ColumnDefinition{
			"mql_id":             {Type: ColumnTypeString, Title: "MQL ID", Required: true, Description: "Marketing qualified lead identifier"},
			"business_segment":   {Type: ColumnTypeString, Title: "Segment", Description: "Business segment of the lead"},
			"first_contact_date": {Type: ColumnTypeTime, Title: "First Contact", Description: "Date of first contact"},
			"origin":             {Type: ColumnTypeString, Title: "Origin", Description: "Marketing channel"},
		},
	},
	TableClosedLeads: {
		Name: TableClosedLeads,
		Columns: map[string]ColumnDefinition{
			"mql_id":           {Type: ColumnTypeString, Title: "MQL ID", Required: true, Description: "Lead that closed"},
			"business_segment": {Type: ColumnTypeString, Title: "Segment", Required: true, Description: "Business segment of the deal"},
			"won_date":         {Type: ColumnTypeTime, Title: "Won At", Required: true, Description: "Close date, empty when unknown"},
		},
	},
}

// TableNames returns the registered table names in a stable order
func TableNames() []string {
	names := make([]string, 0, len(PredefinedTables))
	for name := range PredefinedTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTable returns the definition registered under name
func LookupTable(name string) (TableDefinition, error) {
	def, ok := PredefinedTables[name]
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return def, nil
}

// RequiredColumns returns the required column names, sorted
func (t TableDefinition) RequiredColumns() []string {
	var cols []string
	for name, col := range t.Columns {
		if col.Required {
			cols = append(cols, name)
		}
	}
	sort.Strings(cols)
	return cols
}

// RequireColumns checks present against the required columns and reports
// the first missing one as a *SchemaError
func (t TableDefinition) RequireColumns(present []string) error {
	have := make(map[string]struct{}, len(present))
	for _, c := range present {
		have[c] = struct{}{}
	}
	for _, c := range t.RequiredColumns() {
		if _, ok := have[c]; !ok {
			return &SchemaError{Table: t.Name, Column: c}
		}
	}
	return nil
}
