package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredefinedTables(t *testing.T) {
	expectedTables := []string{
		TableOrderItems, TableOrders, TableCustomers, TableProducts,
		TableCategoryTranslations, TableOrderReviews, TableQualifiedLeads, TableClosedLeads,
	}

	for _, tableName := range expectedTables {
		t.Run("table_"+tableName, func(t *testing.T) {
			table, exists := PredefinedTables[tableName]
			assert.True(t, exists, "Table %s should exist", tableName)
			assert.Equal(t, tableName, table.Name)
			assert.NotEmpty(t, table.RequiredColumns(), "Table %s should have required columns", tableName)
		})
	}
	assert.Len(t, TableNames(), len(expectedTables))
}

func TestContractColumnNames(t *testing.T) {
	assert.Contains(t, PredefinedTables[TableCategoryTranslations].RequiredColumns(), "product_category_name_english")
	assert.Contains(t, PredefinedTables[TableClosedLeads].RequiredColumns(), "won_date")
	assert.Equal(t, []string{"mql_id"}, PredefinedTables[TableQualifiedLeads].RequiredColumns())
}

func TestLookupTable(t *testing.T) {
	def, err := LookupTable(TableOrders)
	require.NoError(t, err)
	assert.Equal(t, TableOrders, def.Name)

	_, err = LookupTable("payments")
	assert.True(t, errors.Is(err, ErrUnknownTable))
}

func TestRequireColumns(t *testing.T) {
	def := PredefinedTables[TableOrderItems]

	tests := []struct {
		name        string
		present     []string
		wantMissing string
	}{
		{name: "all present", present: []string{"order_id", "product_id", "seller_id", "price"}},
		{name: "extra columns ignored", present: []string{"order_item_id", "order_id", "product_id", "seller_id", "price", "freight_value"}},
		{name: "missing price", present: []string{"order_id", "product_id", "seller_id"}, wantMissing: "price"},
		{name: "first missing in name order", present: []string{"order_id"}, wantMissing: "price"},
		{name: "no header", present: nil, wantMissing: "order_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := def.RequireColumns(tt.present)
			if tt.wantMissing == "" {
				assert.NoError(t, err)
				return
			}
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, TableOrderItems, schemaErr.Table)
			assert.Equal(t, tt.wantMissing, schemaErr.Column)
		})
	}
}
