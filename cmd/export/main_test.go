package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ecombi/dashboard/config"
	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/logger"
)

func TestRun(t *testing.T) {
	dataDir := t.TempDir()
	tables := map[string]string{
		domain.TableOrderItems:           "order_id,product_id,seller_id,price\no1,p1,s1,10\n",
		domain.TableOrders:               "order_id,customer_id,order_purchase_timestamp,delivery_delay,delay_status\no1,c1,2017-01-15,2,Late\n",
		domain.TableCustomers:            "customer_id,customer_state\nc1,SP\n",
		domain.TableProducts:             "product_id,product_category_name\np1,brinquedos\n",
		domain.TableCategoryTranslations: "product_category_name,product_category_name_english\nbrinquedos,toys\n",
		domain.TableOrderReviews:         "order_id,review_score\no1,4\n",
		domain.TableQualifiedLeads:       "mql_id\nm1\n",
		domain.TableClosedLeads:          "mql_id,business_segment,won_date\n",
	}
	for table, content := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, table+".csv"), []byte(content), 0o600))
	}

	cfg := &config.Config{
		Data:     config.DataConfig{Source: config.DataSourceCSV, Dir: dataDir, LoadTimeout: 10 * time.Second},
		LogLevel: "error",
		Version:  config.VERSION,
	}
	outDir := t.TempDir()

	path, err := run(cfg, logger.NewLoggerWithWriter(io.Discard, "error"), outDir, "weekly")
	require.NoError(t, err)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "weekly_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Equal(t, "toys", gjson.Get(body, "reports.revenue_by_category.0.category_english_name").String())
	assert.Equal(t, int64(1), gjson.Get(body, "reports.lead_metrics.total_qualified_leads").Int())
	assert.Equal(t, 0.0, gjson.Get(body, "reports.lead_metrics.conversion_rate").Float())
}
