// Package storage defines the live relational store contract and a small
// registry that maps storage.kind values to backend factories. Backends
// register themselves from init; import storage/all to enable every one.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config is the backend-neutral connection description. Backends build a
// native DSN from the discrete fields when DSN is empty.
type Config struct {
	Kind     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Params   map[string]string
}

// Update assigns Value to the row identified by ID.
type Update struct {
	ID    int64
	Value int64
}

// Repository is a live store connection.
type Repository interface {
	// Exec runs a statement (typically a generated multi-row INSERT).
	Exec(ctx context.Context, sql string) error

	// SelectIDs returns every idColumn value of table in ascending order.
	SelectIDs(ctx context.Context, table, idColumn string) ([]int64, error)

	// UpdateByID sets setColumn for each update inside one transaction and
	// commits only after the whole batch succeeded. It returns the number of
	// rows the backend reported as affected.
	UpdateByID(ctx context.Context, table, idColumn, setColumn string, updates []Update) (int64, error)

	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
