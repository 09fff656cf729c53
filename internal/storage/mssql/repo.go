// Package mssql implements a Microsoft SQL Server repository on top of
// database/sql and go-mssqldb. Updates run as prepared single-row
// statements inside one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"listingetl/internal/storage"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db}, close, nil
}

// BuildDSN returns cfg.DSN when set, otherwise a sqlserver:// URL assembled
// from the discrete connection fields.
func BuildDSN(cfg storage.Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 1433
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	if cfg.Database != "" {
		q.Set("database", cfg.Database)
	}
	u := url.URL{
		Scheme:   "sqlserver",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		RawQuery: q.Encode(),
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	return u.String()
}

// Exec runs a raw SQL statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql exec: %w", err)
	}
	return nil
}

// SelectIDs returns idColumn values of table in ascending order.
func (r *Repository) SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error) {
	id := msIdent(idColumn)
	return storage.SelectIDs(ctx, r.db, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", id, msFQN(table), id))
}

// UpdateByID sets setColumn for each id inside one transaction.
func (r *Repository) UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []storage.Update) (int64, error) {
	return storage.UpdateTx(ctx, r.db, updateSQL(table, idColumn, setColumn), updates)
}

func updateSQL(table, idColumn, setColumn string) string {
	return fmt.Sprintf("UPDATE %s SET %s = @p1 WHERE %s = @p2", msFQN(table), msIdent(setColumn), msIdent(idColumn))
}

// msIdent safely quotes a single identifier using square brackets.
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.Vehicles" to
// [dbo].[Vehicles].
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, msIdent(p))
		}
	}
	return strings.Join(out, ".")
}
