// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc.org/sqlite driver. It is the backend
// used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"listingetl/internal/storage"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// In-memory databases exist per connection.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Exec executes an arbitrary SQL statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// SelectIDs returns idColumn values of table in ascending order.
func (r *Repository) SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", sqIdent(idColumn), sqFQN(table), sqIdent(idColumn))
	ids, err := storage.SelectIDs(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return ids, nil
}

// UpdateByID applies updates in one transaction.
func (r *Repository) UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []storage.Update) (int64, error) {
	q := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", sqFQN(table), sqIdent(setColumn), sqIdent(idColumn))
	n, err := storage.UpdateTx(ctx, r.db, q, updates)
	if err != nil {
		return 0, fmt.Errorf("sqlite: %w", err)
	}
	return n, nil
}

func sqIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// sqFQN quotes each dot-separated part ("main.Vehicles").
func sqFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = sqIdent(p)
	}
	return strings.Join(parts, ".")
}
