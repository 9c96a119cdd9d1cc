package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		seq         INT UNSIGNED NOT NULL,
		id          VARCHAR(64)  NOT NULL PRIMARY KEY,
		member_id   CHAR(3)      NOT NULL,
		member_name VARCHAR(255) NOT NULL,
		start_date  DATE         NOT NULL,
		end_date    DATE         NOT NULL,
		note        VARCHAR(500) NOT NULL DEFAULT '',
		INDEX idx_bookings_member (member_id),
		INDEX idx_bookings_start (start_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS members (
		seq  INT UNSIGNED NOT NULL,
		id   CHAR(3)      NOT NULL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS special_periods (
		seq        INT UNSIGNED NOT NULL,
		id         VARCHAR(64)  NOT NULL PRIMARY KEY,
		type       VARCHAR(32)  NOT NULL,
		label      VARCHAR(255) NOT NULL,
		start_date DATE         NOT NULL,
		end_date   DATE         NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the three tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// replaceAllTx deletes every row of table and inserts rows in a single
// multi-value statement.  seq preserves collection order across reloads.
func replaceAllTx(ctx context.Context, tx *sql.Tx, table string, cols string, width int, rows [][]interface{}) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	placeholder := "(?"
	for i := 0; i < width; i++ {
		placeholder += ", ?"
	}
	placeholder += ")"

	query := "INSERT INTO " + table + " (seq, " + cols + ") VALUES "
	args := make([]interface{}, 0, len(rows)*(width+1))
	for i, row := range rows {
		if i > 0 {
			query += ","
		}
		query += placeholder
		args = append(args, i)
		args = append(args, row...)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
