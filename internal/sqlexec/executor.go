// Package sqlexec re-runs generated SQL against the user's own PostgreSQL
// database over a pgx connection pool.
//
// Only read queries are executed, always inside a READ ONLY transaction that is
// rolled back afterwards. Results use the same shape the agent API returns:
// one map from column name to value per row.
package sqlexec

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"sqlagent/cli/internal/backend"
)

// DefaultLimit is appended to statements that carry no LIMIT clause.
const DefaultLimit = 100

// Result is the outcome of a read query.
type Result struct {
	Columns  []string
	Rows     []backend.Row
	RowCount int
	Elapsed  time.Duration
}

// Executor executes read-only SQL using a connection pool.
type Executor struct {
	// Pool is the PostgreSQL connection pool
	Pool *pgxpool.Pool
	// Limit is the row cap applied to statements without LIMIT.
	Limit int

	log *zap.Logger
}

// New creates an Executor from an existing pgx pool.
func New(pool *pgxpool.Pool, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{Pool: pool, Limit: DefaultLimit, log: log}
}

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*Executor, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return New(pool, log), nil
}

// Close releases the pool.
func (e *Executor) Close() {
	if e.Pool != nil {
		e.Pool.Close()
	}
}

// RunSelect executes sql read-only and returns its rows.
func (e *Executor) RunSelect(ctx context.Context, sql string) (*Result, error) {
	stmt, err := PrepareReadOnly(sql, e.Limit)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	tx, err := e.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	res := &Result{Columns: cols, Rows: []backend.Row{}}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(backend.Row, len(cols))
		for i, v := range vals {
			row[cols[i]] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	res.RowCount = len(res.Rows)
	res.Elapsed = time.Since(start)
	e.log.Debug("local query finished",
		zap.Int("rows", res.RowCount),
		zap.Int("columns", len(cols)),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// normalizeValue converts pgx values that do not encode well as JSON.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return fmt.Sprintf("\\x%x", x)
	default:
		return v
	}
}
