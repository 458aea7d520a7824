package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"partpulse/internal"
)

// PostgresSink appends batches with COPY, so a batch lands whole or not at all.
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
}

func OpenPostgres(ctx context.Context, connString, table string) (*PostgresSink, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range createTableSQL(table, true) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ensure table %s: %w", table, err)
		}
	}
	return &PostgresSink{pool: pool, table: table}, nil
}

func (p *PostgresSink) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresSink) AppendBatch(ctx context.Context, batch internal.PulledBatch) error {
	rows := make([][]any, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		values := row.Values()
		values[len(values)-1] = batch.PulledAt
		rows = append(rows, values)
	}

	n, err := p.pool.CopyFrom(ctx, pgx.Identifier{p.table}, internal.ProductColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", p.table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", p.table, n, len(rows))
	}
	return nil
}

func (p *PostgresSink) ListRows(ctx context.Context, f internal.RowFilter) ([]internal.ProductRow, error) {
	query, args := selectRowsSQL(p.table, f, func(n int) string { return "$" + strconv.Itoa(n) })
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductRow
	for rows.Next() {
		var row internal.ProductRow
		var pulled time.Time
		if err := rows.Scan(rowDest(&row, &pulled)...); err != nil {
			return nil, err
		}
		row.DataPulledTime = pulled
		out = append(out, row)
	}
	return out, rows.Err()
}
