package repositories

import (
	"context"
	"database/sql"
	"time"

	"cinehub/internal/database"
	"cinehub/internal/metrics"

	"go.uber.org/zap"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BaseRepository provides common database operations with slow query logging
type BaseRepository struct {
	logger        *zap.Logger
	slowThreshold time.Duration
}

// NewBaseRepository creates a base repository
func NewBaseRepository(logger *zap.Logger, slowThreshold time.Duration) *BaseRepository {
	if slowThreshold <= 0 {
		slowThreshold = 100 * time.Millisecond
	}
	return &BaseRepository{logger: logger, slowThreshold: slowThreshold}
}

// ExecContext executes a statement, logging slow or failed calls
func (r *BaseRepository) ExecContext(ctx context.Context, q querier, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := q.ExecContext(ctx, query, args...)
	r.observe("exec", query, start, err)
	return result, err
}

// QueryContext executes a query that returns rows
func (r *BaseRepository) QueryContext(ctx context.Context, q querier, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	r.observe("query", query, start, err)
	return rows, err
}

// QueryRowContext executes a query that returns a single row
func (r *BaseRepository) QueryRowContext(ctx context.Context, q querier, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := q.QueryRowContext(ctx, query, args...)
	r.observe("query_row", query, start, nil)
	return row
}

func (r *BaseRepository) observe(operation, query string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())

	if duration > r.slowThreshold {
		r.logger.Warn("Slow query detected",
			zap.String("type", operation),
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}

	// conflicts are expected under contention and retried upstream
	if err != nil && !database.IsRetryableError(err) {
		r.logger.Error("Query execution failed",
			zap.String("type", operation),
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}
}

// truncateQuery truncates long queries for logging
func truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
