package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// UpdateTx runs one prepared single-row UPDATE per entry inside a single
// transaction. updateSQL must take the new value first and the id second.
// Any failure rolls the whole batch back. database/sql backends share it.
func UpdateTx(ctx context.Context, db *sql.DB, updateSQL string, updates []Update) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, updateSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	var affected int64
	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.Value, u.ID)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("update id=%d: %w", u.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			affected += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return affected, nil
}

// SelectIDs scans a single int64 column from query.
func SelectIDs(ctx context.Context, db *sql.DB, query string) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select ids: %w", err)
	}
	return ids, nil
}
