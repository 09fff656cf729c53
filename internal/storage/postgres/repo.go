// Package postgres implements a Postgres repository using pgx v5. Per-row
// updates are queued on a pgx.Batch inside one transaction so the whole
// reconciliation costs a single round trip.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"listingetl/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool}, close, nil
}

// BuildDSN returns cfg.DSN when set, otherwise a postgres:// URL assembled
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
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if len(cfg.Params) > 0 {
		q := url.Values{}
		for k, v := range cfg.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres exec: %w", err)
	}
	return nil
}

// SelectIDs returns idColumn values of table in ascending order.
func (r *Repository) SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error) {
	id := pgIdent(idColumn)
	rows, err := r.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", id, pgFQN(table), id))
	if err != nil {
		return nil, fmt.Errorf("postgres select ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("postgres select ids: %w", err)
	}
	return ids, nil
}

// UpdateByID applies updates in one transaction; any failed row rolls the
// batch back.
func (r *Repository) UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []storage.Update) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	q := updateSQL(table, idColumn, setColumn)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := &pgx.Batch{}
	for _, u := range updates {
		b.Queue(q, u.Value, u.ID)
	}
	br := tx.SendBatch(ctx, b)
	var affected int64
	for _, u := range updates {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("postgres update id=%d: %w", u.ID, err)
		}
		affected += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("postgres batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres commit: %w", err)
	}
	return affected, nil
}

func updateSQL(table, idColumn, setColumn string) string {
	return fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", pgFQN(table), pgIdent(setColumn), pgIdent(idColumn))
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return pgx.Identifier{id}.Sanitize() }

// pgFQN quotes a possibly schema-qualified name like "public.vehicles" to
// "public"."vehicles".
func pgFQN(name string) string {
	var id pgx.Identifier
	for _, p := range strings.Split(name, ".") {
		if p != "" {
			id = append(id, p)
		}
	}
	return id.Sanitize()
}
