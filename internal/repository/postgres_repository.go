package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/ecombi/dashboard/internal/domain"
	"github.com/ecombi/dashboard/pkg/logger"
	"github.com/ecombi/dashboard/pkg/tracing"
)

// PostgresDatasetRepository loads the input tables from a PostgreSQL schema
// whose table names match the registry
type PostgresDatasetRepository struct {
	db     *sql.DB
	schema string
	logger logger.Logger
	psql   sq.StatementBuilderType
}

// NewPostgresDatasetRepository creates a repository reading from schema.
// An empty schema resolves tables through the search_path.
func NewPostgresDatasetRepository(db *sql.DB, schema string, logger logger.Logger) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{
		db:     db,
		schema: schema,
		logger: logger,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresDatasetRepository) Source() string {
	return "postgres"
}

func (r *PostgresDatasetRepository) LoadDataset(ctx context.Context) (*domain.Dataset, error) {
	// codecov:ignore:start
	ctx, span := tracing.StartServiceSpan(ctx, "PostgresDatasetRepository", "LoadDataset")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "schema", r.schema)
	// codecov:ignore:end

	ds, err := loadDataset(ctx, r.openTable)
	if err != nil {
		// codecov:ignore:start
		tracing.MarkSpanError(ctx, err)
		// codecov:ignore:end
		r.logger.WithField("schema", r.schema).WithField("error", err.Error()).Error("Failed to load PostgreSQL dataset")
		return nil, fmt.Errorf("failed to load postgres dataset: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"schema":      r.schema,
		"order_items": len(ds.OrderItems),
		"orders":      len(ds.Orders),
		"reviews":     len(ds.OrderReviews),
		"leads":       len(ds.QualifiedLeads),
	}).Info("Loaded PostgreSQL dataset")

	return ds, nil
}

// tableName quotes the table identifier, qualified by schema when set
func (r *PostgresDatasetRepository) tableName(table string) string {
	if r.schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(r.schema) + "." + pq.QuoteIdentifier(table)
}

func (r *PostgresDatasetRepository) openTable(ctx context.Context, table string) (tableReader, error) {
	query, args, err := r.psql.Select("*").From(r.tableName(table)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	return &sqlTableReader{rows: rows, columns: columns}, nil
}

type sqlTableReader struct {
	rows    *sql.Rows
	columns []string
	line    int
}

func (s *sqlTableReader) Columns() []string {
	return s.columns
}

func (s *sqlTableReader) Next() (row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return row{}, err
		}
		return row{}, io.EOF
	}
	s.line++

	data := make([]interface{}, len(s.columns))
	pointers := make([]interface{}, len(s.columns))
	for i := range data {
		pointers[i] = &data[i]
	}
	if err := s.rows.Scan(pointers...); err != nil {
		return row{}, fmt.Errorf("failed to scan row %d: %w", s.line, err)
	}

	values := make(map[string]string, len(s.columns))
	for i, col := range s.columns {
		values[col] = sqlValueString(data[i])
	}
	return row{line: s.line, values: values}, nil
}

func (s *sqlTableReader) Close() error {
	return s.rows.Close()
}

func sqlValueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
