package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"partpulse/internal"
)

// DB is the SQLite sink. The observation table is append-only.
type DB struct {
	conn  *sql.DB
	table string
}

func Open(path, table string) (*DB, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, table: table}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	for _, stmt := range createTableSQL(d.table, false) {
		if _, err := d.conn.Exec(stmt); err != nil {
			return err
		}
	}

	_, err := d.conn.Exec(`
CREATE TABLE IF NOT EXISTS pull_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  pulledAt TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
	return err
}

// AppendBatch inserts every row of batch in one transaction, stamped with
// batch.PulledAt.
func (d *DB) AppendBatch(ctx context.Context, batch internal.PulledBatch) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := "?"
	for i := 1; i < len(internal.ProductColumns); i++ {
		placeholders += ", ?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)", quote(d.table), quotedColumns(), placeholders,
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	pulled := batch.PulledAt.UTC().Format(pulledTimeLayout)
	for _, row := range batch.Rows {
		values := row.Values()
		values[len(values)-1] = pulled
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRows(ctx context.Context, f internal.RowFilter) ([]internal.ProductRow, error) {
	query, args := selectRowsSQL(d.table, f, func(int) string { return "?" })
	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductRow
	for rows.Next() {
		var row internal.ProductRow
		var pulled string
		if err := rows.Scan(rowDest(&row, &pulled)...); err != nil {
			return nil, err
		}
		row.DataPulledTime, err = time.Parse(pulledTimeLayout, pulled)
		if err != nil {
			return nil, fmt.Errorf("parse DataPulledTime %q: %w", pulled, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) RecordRun(ctx context.Context, traceID string, pulledAt time.Time, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO pull_runs (traceId, pulledAt, timingsJson, countsJson) VALUES (?, ?, ?, ?)`,
		traceID, pulledAt.UTC().Format(pulledTimeLayout), string(timingsJSON), string(countsJSON),
	)
	return err
}

type RunRow struct {
	TraceID  string
	PulledAt string
	Counts   map[string]int
}

func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := d.conn.QueryContext(ctx, `SELECT traceId, pulledAt, countsJson FROM pull_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var countsJSON string
		if err := rows.Scan(&r.TraceID, &r.PulledAt, &countsJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(countsJSON), &r.Counts)
		out = append(out, r)
	}
	return out, rows.Err()
}
