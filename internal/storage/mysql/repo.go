// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and github.com/go-sql-driver/mysql. MySQL is the production
// target for the listing tables.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"listingetl/internal/storage"
)

// Config holds MySQL repository configuration.
type Config struct {
	// DSN in go-sql-driver form: user:pass@tcp(host:3306)/db?param=value.
	DSN string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository validates the DSN, opens a pool, and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// literalSQLMode appends NO_BACKSLASH_ESCAPES to the server's session
// sql_mode. Generated literals escape only single quotes, so a backslash
// must be an ordinary character when they are applied.
const literalSQLMode = "CONCAT_WS(',', NULLIF(@@sql_mode, ''), 'NO_BACKSLASH_ESCAPES')"

// BuildDSN returns a DSN assembled from the discrete connection fields, or
// cfg.DSN when set. Both get literalSQLMode unless sql_mode is already given.
// An unparsable cfg.DSN is returned as is and rejected by NewRepository.
func BuildDSN(cfg storage.Config) string {
	if cfg.DSN != "" {
		mc, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return cfg.DSN
		}
		return withLiteralSQLMode(mc).FormatDSN()
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return withLiteralSQLMode(mc).FormatDSN()
}

func withLiteralSQLMode(mc *mysql.Config) *mysql.Config {
	if _, ok := mc.Params["sql_mode"]; ok {
		return mc
	}
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	mc.Params["sql_mode"] = literalSQLMode
	return mc
}

// Exec executes an arbitrary SQL statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql exec: %w", err)
	}
	return nil
}

// SelectIDs returns idColumn values of table in ascending order.
func (r *Repository) SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", myIdent(idColumn), myFQN(table), myIdent(idColumn))
	ids, err := storage.SelectIDs(ctx, r.db, q)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	return ids, nil
}

// UpdateByID applies updates in one transaction. MySQL reports only rows
// whose value actually changed as affected.
func (r *Repository) UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []storage.Update) (int64, error) {
	q := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", myFQN(table), myIdent(setColumn), myIdent(idColumn))
	n, err := storage.UpdateTx(ctx, r.db, q, updates)
	if err != nil {
		return 0, fmt.Errorf("mysql: %w", err)
	}
	return n, nil
}

// myIdent backtick-quotes id, doubling embedded backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// myFQN quotes each dot-separated segment of a qualified name.
func myFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = myIdent(p)
	}
	return strings.Join(parts, ".")
}
