package sqlpipe

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExecutionResult is the outcome of running one sanitized statement.
// Exactly one of Rows / FailureReason is meaningful.
type ExecutionResult struct {
	Rows          []map[string]any
	FailureReason string
}

func (r ExecutionResult) Failed() bool {
	return r.FailureReason != ""
}

// Executor runs sanitized read statements against the operational store.
type Executor interface {
	Execute(ctx context.Context, statement string) ExecutionResult
}

// PgxExecutor executes statements on a pgx connection pool inside a
// read-only transaction. Runtime errors are captured in the result and
// never propagate as faults.
type PgxExecutor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgxExecutor(pool *pgxpool.Pool, timeout time.Duration) *PgxExecutor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PgxExecutor{
		pool:    pool,
		timeout: timeout,
	}
}

func (e *PgxExecutor) Execute(ctx context.Context, statement string) ExecutionResult {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return failure(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, statement)
	if err != nil {
		return failure(fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return failure(fmt.Errorf("read row: %w", err))
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return failure(fmt.Errorf("iterate rows: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return failure(fmt.Errorf("commit: %w", err))
	}

	return ExecutionResult{Rows: results}
}

func failure(err error) ExecutionResult {
	return ExecutionResult{FailureReason: err.Error()}
}
