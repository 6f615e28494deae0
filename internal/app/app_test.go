package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ecombi/dashboard/config"
	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/internal/domain/mocks"
	"github.com/ecombi/dashboard/pkg/logger"
)

var appFixtures = map[string]string{
	domain.TableOrderItems: "order_id,product_id,seller_id,price\n" +
		"o1,p1,s1,100.00\n" +
		"o1,p2,s2,50.50\n" +
		"o2,p1,s1,80\n",
	domain.TableOrders: "order_id,customer_id,order_purchase_timestamp,delivery_delay,delay_status\n" +
		"o1,c1,2017-01-15 10:00:00,-5,Early\n" +
		"o2,c2,2017-02-03 09:30:00,0,On Time\n",
	domain.TableCustomers:            "customer_id,customer_state\nc1,SP\nc2,RJ\n",
	domain.TableProducts:             "product_id,product_category_name\np1,brinquedos\np2,beleza_saude\n",
	domain.TableCategoryTranslations: "product_category_name,product_category_name_english\nbrinquedos,toys\nbeleza_saude,health_beauty\n",
	domain.TableOrderReviews:         "order_id,review_score\no1,5\no2,3\n",
	domain.TableQualifiedLeads:       "mql_id,first_contact_date,origin\nm1,2018-02-01,organic_search\nm2,2018-02-03,paid_search\n",
	domain.TableClosedLeads:          "mql_id,business_segment,won_date\nm1,pet,2018-03-01 12:00:00\n",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for table, content := range appFixtures {
		require.NoError(t, os.WriteFile(filepath.Join(dir, table+".csv"), []byte(content), 0o600))
	}

	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		Data: config.DataConfig{
			Source:      config.DataSourceCSV,
			Dir:         dir,
			LoadTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{Schema: "public"},
		HTTP: config.HTTPConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Environment: "test",
		LogLevel:    "error",
		Version:     config.VERSION,
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...AppOption) *App {
	t.Helper()
	opts = append([]AppOption{WithLogger(logger.NewLoggerWithWriter(io.Discard, "error"))}, opts...)
	return NewApp(cfg, opts...).(*App)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApp_InitializeAndServe(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	require.NoError(t, a.Initialize())
	assert.Equal(t, "csv", a.GetDatasetRepository().Source())
	assert.Nil(t, a.GetDB())

	handler := a.Handler()

	// no snapshot yet
	rec := get(handler, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, a.BuildSnapshot(context.Background()))

	rec = get(handler, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "snapshot.row_counts.orders").Int())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(handler, "/api/kpis")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.InDelta(t, 230.5, gjson.Get(body, "total_revenue").Float(), 1e-9)
	assert.InDelta(t, 50.0, gjson.Get(body, "early_delivery_rate").Float(), 1e-9)
	assert.InDelta(t, 4.0, gjson.Get(body, "avg_satisfaction").Float(), 1e-9)

	rec = get(handler, "/api/reports/"+domain.ReportRevenueByCategory)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "toys", gjson.Get(rec.Body.String(), "0.category_english_name").String())
	assert.Equal(t, int64(2), gjson.Get(rec.Body.String(), "0.order_count").Int())

	rec = get(handler, "/api/tabs/"+domain.TabLeads)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pet", gjson.Get(rec.Body.String(), "display.top_segments.0.business_segment").String())
}

func TestApp_BuildSnapshotFailureKeepsServing(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Data.Dir, domain.TableOrders+".csv")))

	a := newTestApp(t, cfg)
	require.NoError(t, a.Initialize())

	err := a.BuildSnapshot(context.Background())
	require.Error(t, err)

	rec := get(a.Handler(), "/api/kpis")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApp_InitRepositories(t *testing.T) {
	t.Run("unsupported source", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.Source = "parquet"
		a := newTestApp(t, cfg)

		err := a.InitRepositories()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported data source")
	})

	t.Run("postgres without database", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Data.Source = config.DataSourcePostgres
		a := newTestApp(t, cfg)

		assert.Error(t, a.InitRepositories())
	})

	t.Run("postgres with injected database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		cfg := testConfig(t)
		cfg.Data.Source = config.DataSourcePostgres
		a := newTestApp(t, cfg, WithMockDB(db))

		require.NoError(t, a.Initialize())
		assert.Equal(t, "postgres", a.GetDatasetRepository().Source())
		assert.Same(t, db, a.GetDB())

		require.NoError(t, a.Shutdown(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApp_WithDatasetRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDatasetRepository(ctrl)
	repo.EXPECT().Source().Return("stub").AnyTimes()
	repo.EXPECT().LoadDataset(gomock.Any()).Return(&domain.Dataset{}, nil)

	cfg := testConfig(t)
	cfg.Data.Source = "stub"
	a := newTestApp(t, cfg, WithDatasetRepository(repo))

	require.NoError(t, a.Initialize())
	require.NoError(t, a.BuildSnapshot(context.Background()))

	rec := get(a.Handler(), "/api/reports/"+domain.ReportRevenueBySeller)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestApp_RateLimitedResponsesKeepCORSHeaders(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.RateLimitPerMinute = 1
	a := newTestApp(t, cfg)
	require.NoError(t, a.Initialize())
	require.NoError(t, a.BuildSnapshot(context.Background()))
	handler := a.Handler()

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/kpis", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodOptions)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// the preflight did not use the only token
	rec = send(http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(http.MethodGet)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Rate limit exceeded", gjson.Get(rec.Body.String(), "error").String())
}

func TestApp_InitOrder(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	assert.Error(t, a.InitServices())
	assert.Error(t, a.InitHandlers())
	assert.Error(t, a.BuildSnapshot(context.Background()))
	assert.Nil(t, a.GetDashboardService())
}

func TestApp_GracefulShutdownMiddleware(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	var active int64
	handler := a.gracefulShutdownMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		active = a.GetActiveRequestCount()
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := get(handler, "/")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(1), active)
	assert.Equal(t, int64(0), a.GetActiveRequestCount())

	require.NoError(t, a.Shutdown(context.Background()))
	assert.Error(t, a.GetShutdownContext().Err())

	rec = get(handler, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Server is shutting down", gjson.Get(rec.Body.String(), "error").String())
}

func TestApp_StartAndShutdown(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	require.NoError(t, a.Initialize())
	a.SetShutdownTimeout(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	assert.False(t, a.WaitForServerStart(ctx))
	cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, a.WaitForServerStart(ctx))
	assert.True(t, a.IsServerCreated())

	require.NoError(t, a.Shutdown(ctx))

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, http.ErrServerClosed))
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
