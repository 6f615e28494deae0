package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/logger"
	"github.com/ecombi/dashboard/pkg/tracing"
)

// CSVDatasetRepository loads the input tables from <dir>/<table>.csv files
type CSVDatasetRepository struct {
	dir    string
	logger logger.Logger
}

// NewCSVDatasetRepository creates a repository reading CSV exports from dir
func NewCSVDatasetRepository(dir string, logger logger.Logger) *CSVDatasetRepository {
	return &CSVDatasetRepository{dir: dir, logger: logger}
}

func (r *CSVDatasetRepository) Source() string {
	return "csv"
}

// TablePath returns the file the given table is read from
func (r *CSVDatasetRepository) TablePath(table string) string {
	return filepath.Join(r.dir, table+".csv")
}

func (r *CSVDatasetRepository) LoadDataset(ctx context.Context) (*domain.Dataset, error) {
	// codecov:ignore:start
	ctx, span := tracing.StartServiceSpan(ctx, "CSVDatasetRepository", "LoadDataset")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "dir", r.dir)
	// codecov:ignore:end

	ds, err := loadDataset(ctx, r.openTable)
	if err != nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, err)
		// codecov:ignore:end
		r.logger.WithField("dir", r.dir).WithField("error", err.Error()).Error("Failed to load CSV dataset")
		return nil, fmt.Errorf("failed to load csv dataset: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"dir":         r.dir,
		"order_items": len(ds.OrderItems),
		"orders":      len(ds.Orders),
		"reviews":     len(ds.OrderReviews),
		"leads":       len(ds.QualifiedLeads),
	}).Info("Loaded CSV dataset")

	return ds, nil
}

func (r *CSVDatasetRepository) openTable(_ context.Context, table string) (tableReader, error) {
	f, err := os.Open(r.TablePath(table))
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", r.TablePath(table), err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}

	return &csvTableReader{file: f, reader: reader, columns: columns}, nil
}

type csvTableReader struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
}

func (c *csvTableReader) Columns() []string {
	return c.columns
}

func (c *csvTableReader) Next() (row, error) {
	record, err := c.reader.Read()
	if err != nil {
		return row{}, err
	}
	line, _ := c.reader.FieldPos(0)
	values := make(map[string]string, len(c.columns))
	for i, col := range c.columns {
		if i < len(record) {
			values[col] = record[i]
		}
	}
	return row{line: line, values: values}, nil
}

func (c *csvTableReader) Close() error {
	return c.file.Close()
}
